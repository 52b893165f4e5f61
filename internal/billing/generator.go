package billing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Generate creates invoices for every eligible customer in the requested
// period. Per-customer failures are collected and reported; they never
// abort the batch. Re-running for the same period creates nothing new.
//
// Eligibility: the customer is ACTIVE with a live package, has a bill_date,
// joined in the requested month, and has no invoice for the period yet.
// A missing or deleted package is a reported per-customer error, not a
// silent skip.
// The join-month restriction is deliberate business behaviour, not an
// optimisation: billing follows the join anniversary.
func (s *Service) Generate(ctx context.Context, month, year int) (GenerateResult, error) {
	var result GenerateResult
	if err := validatePeriod(month, year); err != nil {
		return result, err
	}

	// Tax rate is read once per batch and snapshotted into every invoice.
	ppn, err := s.taxes.PPN(ctx)
	if err != nil {
		return result, fmt.Errorf("billing: read tax rate: %w", err)
	}

	// The period lock serialises concurrent generation runs so sequence
	// numbers stay gapless. The unique constraint on
	// (customer_id, period_month, period_year) remains the authoritative
	// idempotency guard underneath.
	err = s.repo.WithPeriodLock(ctx, year, month, func(ctx context.Context) error {
		customers, err := s.repo.ListBillableCustomers(ctx)
		if err != nil {
			return err
		}

		for _, c := range customers {
			if c.BillDate == nil {
				continue
			}
			if int(c.JoinDate.Month()) != month {
				continue
			}
			if c.PackageID == 0 {
				result.Errors = append(result.Errors, GenerationError{CustomerID: c.ID, CustomerName: c.Name, Reason: "internet package is missing or deleted"})
				continue
			}

			exists, err := s.repo.HasInvoiceForPeriod(ctx, c.ID, month, year)
			if err != nil {
				result.Errors = append(result.Errors, GenerationError{CustomerID: c.ID, CustomerName: c.Name, Reason: err.Error()})
				continue
			}
			if exists {
				continue
			}

			dueDate, err := dueDateFor(c.JoinDate, *c.BillDate)
			if err != nil {
				result.Errors = append(result.Errors, GenerationError{CustomerID: c.ID, CustomerName: c.Name, Reason: err.Error()})
				continue
			}

			amount := c.PackagePrice.Round(2)
			_, err = s.repo.CreateInvoice(ctx, CreateInvoiceInput{
				CustomerID:  c.ID,
				PackageID:   c.PackageID,
				Amount:      amount,
				PPN:         ppn,
				TotalAmount: TotalWithTax(amount, ppn),
				DueDate:     dueDate,
				PeriodMonth: month,
				PeriodYear:  year,
			})
			if errors.Is(err, ErrDuplicatePeriod) {
				// Lost a race with a concurrent writer; the constraint did
				// its job, treat it like the pre-check hit.
				continue
			}
			if err != nil {
				result.Errors = append(result.Errors, GenerationError{CustomerID: c.ID, CustomerName: c.Name, Reason: err.Error()})
				continue
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// dueDateFor computes the invoice due date from the customer's join date
// and bill day. The due date lands in the join month of the join year.
func dueDateFor(joinDate time.Time, billDay int) (time.Time, error) {
	due := time.Date(joinDate.Year(), joinDate.Month(), billDay, 0, 0, 0, 0, time.UTC)
	if due.Day() != billDay || due.Month() != joinDate.Month() {
		return time.Time{}, fmt.Errorf("bill day %d does not exist in %s", billDay, joinDate.Format("2006-01"))
	}
	return due, nil
}
