package dashboard

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/export"
	"github.com/okian/bankdash/pkg/logger"
	"github.com/okian/bankdash/pkg/metrics"
)

// handleExport serves a table the session last displayed as CSV. It never
// calls the API.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)

	name, ok := strings.CutSuffix(r.PathValue("file"), ".csv")
	if !ok || name == "" {
		http.Error(w, "export must end in .csv", http.StatusNotFound)
		return
	}
	tbl, ok := sess.Table(name)
	if !ok {
		http.Error(w, "no table named "+strconv.Quote(name)+" is displayed in this session", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	rows, err := export.WriteCSV(&buf, tbl)
	if err != nil {
		s.logger.Error(ctx, "export failed", logger.String("table", name), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	metrics.RecordExport(name)
	s.logger.Debug(ctx, "export served", logger.String("table", name), logger.Int("rows", rows))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(tbl)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
