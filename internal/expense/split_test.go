package expense

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/davidhsv/lunchable-splitlunch/internal/splitwise"
)

var _ = Describe("SelfPaidSplit", func() {
	When("the user fronted a shared dinner", func() {
		raw := fixture(false, "92.47", []splitwise.ExpenseUser{
			{UserID: currentUserID, PaidShare: "92.47", OwedShare: "30.82"},
			{UserID: otherUserID, PaidShare: "0.0", OwedShare: "61.65"},
		})

		It("should split into the user's own share and the fronted remainder", func() {
			built, err := FromRecord(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(built.SelfPaid).To(BeTrue())

			personal, reimbursable := SelfPaidSplit(built, currentUserID)
			Expect(personal.StringFixed(2)).To(Equal("30.82"))
			Expect(reimbursable.StringFixed(2)).To(Equal("61.65"))
		})
	})

	When("the user paid a round number for two people", func() {
		raw := fixture(false, "100.0", []splitwise.ExpenseUser{
			{UserID: currentUserID, PaidShare: "100.0", OwedShare: "10.0"},
			{UserID: otherUserID, PaidShare: "0.0", OwedShare: "90.0"},
		})

		It("should assign the user's owed share to personal and the rest to reimbursable", func() {
			built, err := FromRecord(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())

			personal, reimbursable := SelfPaidSplit(built, currentUserID)
			Expect(personal.StringFixed(2)).To(Equal("10.00"))
			Expect(reimbursable.StringFixed(2)).To(Equal("90.00"))
		})
	})

	When("the split is recombined", func() {
		raw := fixture(false, "92.47", []splitwise.ExpenseUser{
			{UserID: currentUserID, PaidShare: "92.47", OwedShare: "30.82"},
			{UserID: otherUserID, PaidShare: "0.0", OwedShare: "30.83"},
			{UserID: thirdUserID, PaidShare: "0.0", OwedShare: "30.82"},
		})

		It("should sum back to the original amount within tolerance", func() {
			built, err := FromRecord(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())

			personal, reimbursable := SelfPaidSplit(built, currentUserID)
			diff := personal.Add(reimbursable).Sub(built.OriginalAmount).Abs()
			Expect(diff.LessThanOrEqual(decimal.New(1, -6))).To(BeTrue())
		})

		It("should equal the sum of the other participants' owed shares", func() {
			built, err := FromRecord(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())

			_, reimbursable := SelfPaidSplit(built, currentUserID)
			others := decimal.Zero
			for _, share := range built.Users {
				if share.UserID != currentUserID {
					others = others.Add(share.OwedShare)
				}
			}
			Expect(reimbursable.Equal(others)).To(BeTrue())
		})
	})

	When("the user has no share entry", func() {
		It("should default the personal portion to zero", func() {
			raw := fixture(false, "54.00", []splitwise.ExpenseUser{
				{UserID: otherUserID, PaidShare: "54.00", OwedShare: "27.00"},
				{UserID: thirdUserID, PaidShare: "0.0", OwedShare: "27.00"},
			})
			built, err := FromRecord(raw, currentUserID)
			Expect(err).NotTo(HaveOccurred())

			personal, reimbursable := SelfPaidSplit(built, currentUserID)
			Expect(personal.IsZero()).To(BeTrue())
			Expect(reimbursable.StringFixed(2)).To(Equal("54.00"))
		})
	})
})
