package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/oksasatya/library-management/internal/domain/entity"
)

// BatchIDs decodes either a JSON list of ids or a string holding a JSON-encoded
// list. Both produce the same trimmed, de-duplicated list in first-seen order.
type BatchIDs []string

var errBatchShape = errors.New("ids must be a list of strings or a JSON-encoded list")

func (b *BatchIDs) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		var s string
		if json.Unmarshal(data, &s) != nil {
			return errBatchShape
		}
		if json.Unmarshal([]byte(s), &list) != nil {
			return errBatchShape
		}
	}
	*b = canonicalIDs(list)
	return nil
}

func canonicalIDs(in []string) BatchIDs {
	out := make(BatchIDs, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type batchRequest struct {
	IDs BatchIDs `json:"ids" binding:"required"`
}

type batchResponse struct {
	Deleted     []string `json:"deleted"`
	NotFound    []string `json:"not_found"`
	NotReturned []string `json:"not_returned,omitempty"`
	Failed      []string `json:"failed,omitempty"`
}

func batchOf(r *entity.BatchResult) batchResponse {
	return batchResponse{Deleted: r.Deleted, NotFound: r.NotFound, NotReturned: r.NotReturned, Failed: r.Failed}
}

// loanBatchResponse always renders not_returned.
type loanBatchResponse struct {
	Deleted     []string `json:"deleted"`
	NotFound    []string `json:"not_found"`
	NotReturned []string `json:"not_returned"`
	Failed      []string `json:"failed,omitempty"`
}

// parseOptionalDate parses a YYYY-MM-DD string; empty means unset.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := entity.ParseDate(strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := entity.FormatDate(*t)
	return &s
}

type bookResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn"`
	PublishedDate string    `json:"published_date"`
	NumberOfCopy  int       `json:"number_of_copy"`
	IsAvailable   bool      `json:"is_available"`
	CoverURL      string    `json:"cover_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func bookOf(b *entity.Book) bookResponse {
	return bookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		ISBN:          b.ISBN,
		PublishedDate: entity.FormatDate(b.PublishedDate),
		NumberOfCopy:  b.NumberOfCopy,
		IsAvailable:   b.IsAvailable,
		CoverURL:      b.CoverURL,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func booksOf(bs []*entity.Book) []bookResponse {
	out := make([]bookResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, bookOf(b))
	}
	return out
}

type memberResponse struct {
	ID             string    `json:"id"`
	MembershipName string    `json:"membership_name"`
	MembershipID   string    `json:"membership_id"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func memberOf(m *entity.Member) memberResponse {
	return memberResponse{
		ID:             m.ID,
		MembershipName: m.MembershipName,
		MembershipID:   m.MembershipID,
		Email:          m.Email,
		Phone:          m.Phone,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type loanResponse struct {
	ID         string  `json:"id"`
	MemberID   string  `json:"member_id"`
	BookID     string  `json:"book_id"`
	LoanDate   string  `json:"loan_date"`
	DueDate    *string `json:"due_date,omitempty"`
	ReturnDate *string `json:"return_date"`
}

func loanOf(l *entity.Loan) loanResponse {
	return loanResponse{
		ID:         l.ID,
		MemberID:   l.MemberID,
		BookID:     l.BookID,
		LoanDate:   entity.FormatDate(l.LoanDate),
		DueDate:    datePtr(l.DueDate),
		ReturnDate: datePtr(l.ReturnDate),
	}
}

func loansOf(ls []*entity.Loan) []loanResponse {
	out := make([]loanResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, loanOf(l))
	}
	return out
}

type overdueResponse struct {
	LoanID     string `json:"loan_id"`
	MemberName string `json:"member_name"`
	BookTitle  string `json:"book_title"`
	LoanDate   string `json:"loan_date"`
	ReturnDate string `json:"return_date"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	UserType  string    `json:"user_type"`
	Enabled   bool      `json:"enabled"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func userOf(u *entity.User) userResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Username:  u.Username,
		UserType:  u.UserType,
		Enabled:   u.Enabled,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// loginUser is the user summary returned alongside a token.
type loginUser struct {
	FullName string   `json:"full_name"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	UserType string   `json:"user_type"`
	Roles    []string `json:"roles"`
}
