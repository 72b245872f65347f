package router

// Access is the authentication level a route demands.
type Access int

const (
	Public Access = iota
	Authenticated
	Admin
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

type Policy struct {
	Access      Access
	RateLimited bool
}

// Policies is the access table for every route under /api, keyed by
// "METHOD path". A route missing from this table cannot be registered.
var Policies = map[string]Policy{
	"POST /login":    {Access: Public, RateLimited: true},
	"POST /register": {Access: Public, RateLimited: true},
	"GET /roles":     {Access: Public},
	"GET /me":        {Access: Authenticated},

	"GET /books":                  {Access: Authenticated},
	"GET /books/available":        {Access: Authenticated},
	"GET /books/search":           {Access: Authenticated},
	"GET /books/:id":              {Access: Authenticated},
	"POST /books":                 {Access: Authenticated},
	"PATCH /books/:id":            {Access: Authenticated},
	"PUT /books/:id/availability": {Access: Authenticated},
	"POST /books/:id/cover":       {Access: Authenticated},
	"POST /books/delete":          {Access: Authenticated},

	"GET /members":         {Access: Authenticated},
	"GET /members/:id":     {Access: Authenticated},
	"POST /members":        {Access: Authenticated},
	"PATCH /members/:id":   {Access: Authenticated},
	"POST /members/delete": {Access: Authenticated},

	"GET /loans":                 {Access: Authenticated},
	"GET /loans/:id":             {Access: Authenticated},
	"POST /loans":                {Access: Authenticated},
	"PUT /loans/:id/return-date": {Access: Authenticated},
	"POST /loans/:id/return":     {Access: Authenticated},
	"POST /loans/delete":         {Access: Authenticated},
	"GET /reports/overdue":       {Access: Authenticated},
	"GET /reports/active":        {Access: Authenticated},

	"GET /users":          {Access: Authenticated},
	"GET /users/by-email": {Access: Authenticated},
	"GET /users/:id":      {Access: Authenticated},
	"POST /users":         {Access: Admin},
	"PATCH /users/:email": {Access: Admin},
	"POST /users/delete":  {Access: Admin},

	"GET /stats/counts": {Access: Authenticated},

	"GET /debug/vars": {Access: Public, RateLimited: true},
}
