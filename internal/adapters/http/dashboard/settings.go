package dashboard

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/adapters/upstream"
	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/view"
	"github.com/okian/bankdash/pkg/logger"
)

type settingsForm struct {
	BaseURL    string
	DefaultURL string
	Prefix     string
}

func (s *Server) newSettingsForm(value string) settingsForm {
	return settingsForm{
		BaseURL:    value,
		DefaultURL: s.client.BaseURL(),
		Prefix:     strings.TrimPrefix(s.client.APIURL(), s.client.BaseURL()),
	}
}

func (s *Server) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)
	data := pageData{Header: s.apiHeader(ctx, c), Form: s.newSettingsForm(sess.BaseURL())}
	s.render(w, r, pageSettings, "Settings", data)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		c := s.clientFor(sess)
		data := pageData{Header: s.apiHeader(ctx, c), Form: s.newSettingsForm(sess.BaseURL())}
		data.Banner = view.BannerFor(apierr.WrapKind("dashboard.settings", apierr.ErrInvalidRequest, err))
		s.render(w, r, pageSettings, "Settings", data)
		return
	}

	raw := strings.TrimSpace(r.PostForm.Get("base_url"))
	if raw == "" {
		sess.SetBaseURL("")
		s.logger.Info(ctx, "api base url reset", logger.String("session", sess.ID))
	} else {
		u, err := upstream.NormalizeBaseURL(raw)
		if err != nil {
			c := s.clientFor(sess)
			data := pageData{Header: s.apiHeader(ctx, c), Form: s.newSettingsForm(raw), Banner: view.BannerFor(err)}
			s.render(w, r, pageSettings, "Settings", data)
			return
		}
		sess.SetBaseURL(u)
		s.logger.Info(ctx, "api base url changed", logger.String("session", sess.ID), logger.String("base_url", u))
	}

	c := s.clientFor(sess)
	data := pageData{
		Header: s.apiHeader(ctx, c),
		Form:   s.newSettingsForm(sess.BaseURL()),
		Banner: &view.Banner{Kind: view.BannerSuccess, Title: "Settings saved", Detail: "Using " + c.BaseURL()},
	}
	data.Sections = []view.Section{s.section(ctx, pageSettings, "connection", "Connection check", func(ctx context.Context, sec *view.Section) error {
		if err := c.Health(ctx); err != nil {
			return err
		}
		sec.Alert = &view.Banner{Kind: view.BannerSuccess, Title: "API reachable", Detail: c.APIURL() + "/system/health answered."}
		return nil
	})}
	s.render(w, r, pageSettings, "Settings", data)
}
