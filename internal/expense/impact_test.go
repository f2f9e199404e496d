package expense

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/davidhsv/lunchable-splitlunch/internal/splitwise"
)

// fixture builds a raw record with the given shares and payment flag
func fixture(payment bool, cost string, users []splitwise.ExpenseUser) *splitwise.Expense {
	return &splitwise.Expense{
		ID:        651230,
		Payment:   payment,
		Cost:      cost,
		Date:      time.Date(2023, 5, 2, 12, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2023, 5, 2, 12, 5, 0, 0, time.UTC),
		UpdatedAt: time.Date(2023, 5, 2, 12, 5, 0, 0, time.UTC),
		Users:     users,
	}
}

var _ = Describe("Impact", func() {
	// When someone else pays, the impact on the current user is positive;
	// when the current user pays, it is negative. Records the user is not
	// part of have no impact at all.

	When("someone else paid an expense the user shares in", func() {
		raw := fixture(false, "19.98", []splitwise.ExpenseUser{
			{UserID: otherUserID, PaidShare: "19.98", OwedShare: "9.99"},
			{UserID: currentUserID, PaidShare: "0.0", OwedShare: "9.99"},
		})

		It("should report a positive impact of the user's owed share", func() {
			impact, selfPaid, err := Impact(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(impact.StringFixed(2)).To(Equal("9.99"))
			Expect(selfPaid).To(BeFalse())
		})
	})

	When("someone else paid a transfer to the user", func() {
		raw := fixture(true, "523.84", []splitwise.ExpenseUser{
			{UserID: otherUserID, PaidShare: "523.84", OwedShare: "0.0"},
			{UserID: currentUserID, PaidShare: "0.0", OwedShare: "523.84"},
		})

		It("should report a positive impact of the full amount", func() {
			impact, selfPaid, err := Impact(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(impact.StringFixed(2)).To(Equal("523.84"))
			Expect(selfPaid).To(BeFalse())
		})
	})

	When("the user paid an expense for the group", func() {
		raw := fixture(false, "92.47", []splitwise.ExpenseUser{
			{UserID: currentUserID, PaidShare: "92.47", OwedShare: "30.82"},
			{UserID: otherUserID, PaidShare: "0.0", OwedShare: "61.65"},
		})

		It("should report a negative impact of what others owe back", func() {
			impact, selfPaid, err := Impact(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(impact.StringFixed(2)).To(Equal("-61.65"))
			Expect(selfPaid).To(BeTrue())
		})
	})

	When("the user paid a transfer to someone else", func() {
		raw := fixture(true, "431.92", []splitwise.ExpenseUser{
			{UserID: currentUserID, PaidShare: "431.92", OwedShare: "0.0"},
			{UserID: otherUserID, PaidShare: "0.0", OwedShare: "431.92"},
		})

		It("should report a negative impact of the full amount", func() {
			impact, selfPaid, err := Impact(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(impact.StringFixed(2)).To(Equal("-431.92"))
			Expect(selfPaid).To(BeTrue())
		})
	})

	When("the user is not a participant", func() {
		expenseRaw := fixture(false, "54.00", []splitwise.ExpenseUser{
			{UserID: otherUserID, PaidShare: "54.00", OwedShare: "27.00"},
			{UserID: thirdUserID, PaidShare: "0.0", OwedShare: "27.00"},
		})
		transferRaw := fixture(true, "54.00", []splitwise.ExpenseUser{
			{UserID: otherUserID, PaidShare: "54.00", OwedShare: "0.0"},
			{UserID: thirdUserID, PaidShare: "0.0", OwedShare: "54.00"},
		})

		It("should report zero impact for an expense", func() {
			impact, selfPaid, err := Impact(expenseRaw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(impact.IsZero()).To(BeTrue())
			Expect(selfPaid).To(BeFalse())
		})

		It("should report zero impact for a transfer", func() {
			impact, selfPaid, err := Impact(transferRaw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(impact.IsZero()).To(BeTrue())
			Expect(selfPaid).To(BeFalse())
		})
	})

	When("computed twice on the same record", func() {
		raw := fixture(false, "92.47", []splitwise.ExpenseUser{
			{UserID: currentUserID, PaidShare: "92.47", OwedShare: "30.82"},
			{UserID: otherUserID, PaidShare: "0.0", OwedShare: "61.65"},
		})

		It("should return identical results", func() {
			first, firstSelfPaid, err := Impact(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			second, secondSelfPaid, err := Impact(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Equal(second)).To(BeTrue())
			Expect(firstSelfPaid).To(Equal(secondSelfPaid))
		})
	})

	When("a share is malformed", func() {
		raw := fixture(false, "10.00", []splitwise.ExpenseUser{
			{UserID: currentUserID, PaidShare: "ten", OwedShare: "5.00"},
			{UserID: otherUserID, PaidShare: "0.0", OwedShare: "5.00"},
		})

		It("should return an error", func() {
			_, _, err := Impact(raw, currentUserID)
			Expect(err).To(HaveOccurred())
		})
	})
})
