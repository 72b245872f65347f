package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/oksasatya/library-management/internal/domain/entity"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/oksasatya/library-management/internal/application")

// LoanService is the only writer of Book.NumberOfCopy and Book.IsAvailable
// during borrow and return.
type LoanService struct {
	Store  repo.Store
	Logger *logrus.Logger
	Clock  Clock
}

func NewLoanService(store repo.Store, logger *logrus.Logger) *LoanService {
	return &LoanService{Store: store, Logger: logger}
}

type BorrowInput struct {
	MemberID string
	BookID   string
	// LoanDate defaults to today when zero.
	LoanDate time.Time
	// DueDate is the requested return date. It is kept on the loan but does not
	// mark it returned.
	DueDate *time.Time
}

// ReturnResult reports the book state after a full return.
type ReturnResult struct {
	BookID        string
	UpdatedCopies int
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Borrow creates an active loan and takes one copy of the book. The book row is
// locked for the whole transaction so concurrent borrows cannot both see the
// last copy.
func (s *LoanService) Borrow(ctx context.Context, in BorrowInput) (loan *entity.Loan, err error) {
	ctx, span := startSpan(ctx, "loan.borrow",
		attribute.String("book_id", in.BookID), attribute.String("member_id", in.MemberID))
	defer func() { endSpan(span, err) }()

	loanDate := in.LoanDate
	if loanDate.IsZero() {
		loanDate = entity.Day(s.Clock.Now())
	}
	if in.DueDate != nil && in.DueDate.Before(loanDate) {
		return nil, invalid("return_date must not precede loan_date")
	}

	var remaining int
	err = s.Store.WithinTx(ctx, func(tx repo.Store) error {
		book, err := tx.Books().GetForUpdate(ctx, in.BookID)
		if err != nil {
			return lookup(err, ErrBookNotFound, "get book")
		}
		if !book.Lendable() {
			return ErrNoCopiesAvailable
		}
		if _, err := tx.Members().GetByID(ctx, in.MemberID); err != nil {
			return lookup(err, ErrMemberNotFound, "get member")
		}

		l := &entity.Loan{
			MemberID: in.MemberID,
			BookID:   in.BookID,
			LoanDate: loanDate,
			DueDate:  in.DueDate,
		}
		if err := tx.Loans().Create(ctx, l); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}

		book.NumberOfCopy--
		if book.NumberOfCopy == 0 {
			book.IsAvailable = false
		}
		if err := tx.Books().Update(ctx, book); err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		loan, remaining = l, book.NumberOfCopy
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("loan_id", loan.ID))
	s.Logger.WithFields(logrus.Fields{
		"loan_id":   loan.ID,
		"book_id":   loan.BookID,
		"member_id": loan.MemberID,
		"remaining": remaining,
	}).Info("loan created")
	return loan, nil
}

// MarkReturned stamps the return date and flags the book available. The copy
// count is left alone and the loan is kept.
func (s *LoanService) MarkReturned(ctx context.Context, id string, returnDate time.Time) (loan *entity.Loan, err error) {
	ctx, span := startSpan(ctx, "loan.mark_returned", attribute.String("loan_id", id))
	defer func() { endSpan(span, err) }()

	if returnDate.IsZero() {
		returnDate = entity.Day(s.Clock.Now())
	}

	err = s.Store.WithinTx(ctx, func(tx repo.Store) error {
		l, err := tx.Loans().GetByID(ctx, id)
		if err != nil {
			return lookup(err, ErrLoanNotFound, "get loan")
		}
		rd := returnDate
		l.ReturnDate = &rd
		if err := tx.Loans().Update(ctx, l); err != nil {
			return lookup(err, ErrLoanNotFound, "update loan")
		}

		book, err := tx.Books().GetForUpdate(ctx, l.BookID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			s.Logger.WithFields(logrus.Fields{"loan_id": l.ID, "book_id": l.BookID}).Warn("returned loan references a missing book")
		case err != nil:
			return fmt.Errorf("get book: %w", err)
		default:
			book.IsAvailable = true
			if err := tx.Books().Update(ctx, book); err != nil {
				return fmt.Errorf("update book: %w", err)
			}
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"loan_id":     loan.ID,
		"book_id":     loan.BookID,
		"member_id":   loan.MemberID,
		"return_date": entity.FormatDate(returnDate),
	}).Info("loan marked returned")
	return loan, nil
}

// CompleteReturn puts the copy back on the shelf and deletes the loan.
func (s *LoanService) CompleteReturn(ctx context.Context, id string) (res *ReturnResult, err error) {
	ctx, span := startSpan(ctx, "loan.complete_return", attribute.String("loan_id", id))
	defer func() { endSpan(span, err) }()

	var loan *entity.Loan
	err = s.Store.WithinTx(ctx, func(tx repo.Store) error {
		l, err := tx.Loans().GetByID(ctx, id)
		if err != nil {
			return lookup(err, ErrLoanNotFound, "get loan")
		}
		book, err := tx.Books().GetForUpdate(ctx, l.BookID)
		if err != nil {
			return lookup(err, ErrBookNotFound, "get book")
		}
		book.NumberOfCopy++
		book.IsAvailable = true
		if err := tx.Books().Update(ctx, book); err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if err := tx.Loans().Delete(ctx, l.ID); err != nil {
			return lookup(err, ErrLoanNotFound, "delete loan")
		}
		loan = l
		res = &ReturnResult{BookID: book.ID, UpdatedCopies: book.NumberOfCopy}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"loan_id":   loan.ID,
		"book_id":   loan.BookID,
		"member_id": loan.MemberID,
		"copies":    res.UpdatedCopies,
	}).Info("loan completed")
	return res, nil
}

// DeleteLoans removes returned loans. Loans without a return date are reported
// in NotReturned and left in place.
func (s *LoanService) DeleteLoans(ctx context.Context, ids []string) (res *entity.BatchResult, err error) {
	ctx, span := startSpan(ctx, "loan.delete", attribute.Int("ids", len(ids)))
	defer func() { endSpan(span, err) }()

	res = entity.NewBatchResult()
	for _, id := range ids {
		l, err := s.Store.Loans().GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			res.NotFound = append(res.NotFound, id)
			continue
		}
		if err != nil {
			s.Logger.WithError(err).WithField("loan_id", id).Error("load loan for delete failed")
			res.Failed = append(res.Failed, id)
			continue
		}
		if !l.Returned() {
			res.NotReturned = append(res.NotReturned, id)
			continue
		}
		err = s.Store.Loans().Delete(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			res.NotFound = append(res.NotFound, id)
			continue
		}
		if err != nil {
			s.Logger.WithError(err).WithField("loan_id", id).Error("delete loan failed")
			res.Failed = append(res.Failed, id)
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}
	s.Logger.WithFields(logrus.Fields{
		"deleted":      len(res.Deleted),
		"not_found":    len(res.NotFound),
		"not_returned": len(res.NotReturned),
		"failed":       len(res.Failed),
	}).Info("loans deleted")
	return res, nil
}

// ReportOverdue lists loans whose return date is set and earlier than today,
// joined with book title and member name. Loans whose book or member is gone
// are left out.
func (s *LoanService) ReportOverdue(ctx context.Context) (out []entity.OverdueLoan, err error) {
	ctx, span := startSpan(ctx, "loan.report_overdue")
	defer func() { endSpan(span, err) }()

	loans, err := s.Store.Loans().ListReturnDateBefore(ctx, entity.Day(s.Clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	titles := map[string]string{}
	names := map[string]string{}
	out = make([]entity.OverdueLoan, 0, len(loans))
	for _, l := range loans {
		title, ok := titles[l.BookID]
		if !ok {
			b, err := s.Store.Books().GetByID(ctx, l.BookID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("get book: %w", err)
			}
			if b != nil {
				title, ok = b.Title, true
			}
			if ok {
				titles[l.BookID] = title
			}
		}
		if !ok {
			continue
		}

		name, ok := names[l.MemberID]
		if !ok {
			m, err := s.Store.Members().GetByID(ctx, l.MemberID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("get member: %w", err)
			}
			if m != nil {
				name, ok = m.MembershipName, true
			}
			if ok {
				names[l.MemberID] = name
			}
		}
		if !ok {
			continue
		}

		out = append(out, entity.OverdueLoan{
			LoanID:     l.ID,
			MemberName: name,
			BookTitle:  title,
			LoanDate:   l.LoanDate,
			ReturnDate: *l.ReturnDate,
		})
	}
	span.SetAttributes(attribute.Int("rows", len(out)))
	return out, nil
}

// ReportActive returns every loan regardless of return state.
func (s *LoanService) ReportActive(ctx context.Context) ([]*entity.Loan, error) {
	return s.Store.Loans().List(ctx)
}

func (s *LoanService) List(ctx context.Context) ([]*entity.Loan, error) {
	return s.Store.Loans().List(ctx)
}

func (s *LoanService) Get(ctx context.Context, id string) (*entity.Loan, error) {
	l, err := s.Store.Loans().GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrLoanNotFound, "get loan")
	}
	return l, nil
}
