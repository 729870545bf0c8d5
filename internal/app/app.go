package app

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/qudratrading/mawared/internal/adapters/cms"
	"github.com/qudratrading/mawared/internal/adapters/httpserver"
	"github.com/qudratrading/mawared/internal/adapters/mailer"
	"github.com/qudratrading/mawared/internal/adapters/repo/postgres"
	"github.com/qudratrading/mawared/internal/domain"
	"github.com/qudratrading/mawared/internal/usecase"
	"github.com/qudratrading/mawared/internal/views"
)

type App struct {
	DB        *gorm.DB
	Tmpl      *template.Template
	CatalogUC *usecase.CatalogUC
	LeadUC    *usecase.LeadUC
	Leads     domain.LeadRepo
}

// NewApp wires the content client, usecases and templates. db may be nil:
// the site renders without persistence, only lead storage needs it.
func NewApp(db *gorm.DB) (*App, error) {
	source := cms.New(os.Getenv("CMS_BASE_URL"), os.Getenv("CMS_API_TOKEN"))

	var leadRepo domain.LeadRepo
	if db != nil {
		leadRepo = postgres.NewLeadRepo(db)
	}

	app := &App{DB: db, Leads: leadRepo}
	app.CatalogUC = &usecase.CatalogUC{Source: source}
	app.LeadUC = usecase.NewLeadUC(leadRepo, newMailerFromEnv())

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"join": func(parts []string, sep string) string {
			return strings.Join(parts, sep)
		},
		"has": func(list []string, v string) bool {
			for _, s := range list {
				if s == v {
					return true
				}
			}
			return false
		},
		"img": func(u string) string {
			s := strings.TrimSpace(u)
			if s == "" {
				return s
			}
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "/") {
				s = "/" + s
			}
			s = strings.ReplaceAll(s, " ", "%20")
			return s
		},
		"imgw": func(u string, w int) string {
			base := strings.TrimSpace(u)
			if base == "" {
				return base
			}
			if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") && !strings.HasPrefix(base, "/") {
				base = "/" + base
			}
			base = strings.ReplaceAll(base, " ", "%20")
			return fmt.Sprintf("%s?w=%d", base, w)
		},
		// CMS body blocks are authored HTML, rendered unescaped
		"safe": func(s string) template.HTML { return template.HTML(s) },
		"kb": func(size int64) string {
			if size <= 0 {
				return ""
			}
			return fmt.Sprintf("%d KB", (size+1023)/1024)
		},
	}

	appEnv := strings.ToLower(os.Getenv("APP_ENV"))
	isDev := appEnv == "" || appEnv == "development" || appEnv == "dev"

	var tmpl *template.Template
	var err error
	if isDev {
		tmpl, err = template.New("layout").Funcs(funcMap).ParseGlob("internal/views/*.html")
	} else {
		tmpl, err = template.New("layout").Funcs(funcMap).ParseFS(views.FS, "*.html")
	}
	if err != nil {
		return nil, err
	}
	app.Tmpl = tmpl

	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Tmpl, a.CatalogUC, a.LeadUC, a.Leads)
}

func (a *App) Migrate() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.AutoMigrate(&domain.Lead{})
}

func newMailerFromEnv() domain.Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	var to []string
	for _, addr := range strings.Split(os.Getenv("LEADS_TO"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return mailer.NewSMTP(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"), from, to)
}
