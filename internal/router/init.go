package router

import (
	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/internal/container"
	"github.com/oksasatya/library-management/internal/infrastructure/search"
	handlers "github.com/oksasatya/library-management/internal/interface/http"
	"github.com/oksasatya/library-management/internal/router/modules"
	"github.com/oksasatya/library-management/pkg/helpers"
)

// Services are the application services the HTTP modules run on.
type Services struct {
	Auth    *app.AuthService
	Roles   *app.RoleDirectory
	Users   *app.UserService
	Books   *app.BookService
	Members *app.MemberService
	Loans   *app.LoanService
	Stats   *app.StatsService
}

// BuildServices assembles the services from the container singletons.
// Search, cover upload and welcome e-mails are left unwired when their
// backend is absent.
func BuildServices() *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	store := container.GetStore()

	var index app.BookIndex
	if es := container.GetES(); es != nil {
		index = search.NewBookIndex(es, cfg.ESBooksIndex)
	}
	var uploader app.ObjectUploader
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		uploader = &helpers.GCSUploader{Client: gcs, Bucket: cfg.GCSBucket}
	}
	var publisher app.JobPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		publisher = pub
	}

	return &Services{
		Auth:  app.NewAuthService(store, container.GetJWT(), logger),
		Roles: app.NewRoleDirectory(store),
		Users: app.NewUserService(store, publisher, app.MailInfo{
			CompanyName: cfg.CompanyName,
			SupportURL:  cfg.SupportURL,
			LoginURL:    cfg.LoginURL,
		}, logger),
		Books:   app.NewBookService(store, index, uploader, logger),
		Members: app.NewMemberService(store, logger),
		Loans:   app.NewLoanService(store, logger),
		Stats:   app.NewStatsService(store),
	}
}

// InitModules wires every HTTP module onto the registry.
// This function should be called once during application startup
func InitModules(r *Registry, s *Services) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(s.Auth, s.Users, s.Roles, logger)))
	r.Add(modules.NewBookModule(handlers.NewBookHandler(s.Books, logger)))
	r.Add(modules.NewMemberModule(handlers.NewMemberHandler(s.Members, logger)))
	r.Add(modules.NewLoanModule(handlers.NewLoanHandler(s.Loans, logger)))
	r.Add(modules.NewUserModule(
		handlers.NewUserHandler(s.Users, logger),
		handlers.NewStatsHandler(s.Stats, logger),
	))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
