package entity

import "time"

// Loan links one member to one book. A nil ReturnDate means the copy is still out;
// DueDate is the return date requested at borrow time and is informational only.
type Loan struct {
	ID         string
	MemberID   string
	BookID     string
	LoanDate   time.Time
	DueDate    *time.Time
	ReturnDate *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Returned reports whether a return date has been recorded.
func (l *Loan) Returned() bool { return l.ReturnDate != nil }

// OverdueLoan is a read-side join of a loan with its book title and member name.
type OverdueLoan struct {
	LoanID     string
	MemberName string
	BookTitle  string
	LoanDate   time.Time
	ReturnDate time.Time
}
