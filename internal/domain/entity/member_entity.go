package entity

import "time"

type Member struct {
	ID             string
	MembershipName string
	MembershipID   string
	Email          string
	Phone          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
