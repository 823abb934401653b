package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scaffoldgen/internal/generator"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
	"scaffoldgen/internal/scaffold"
	"scaffoldgen/internal/tablemeta"
	"scaffoldgen/pkg/config"
)

var errNoProvider = errors.New("no active connection; POST /api/connect to create one")

// ColumnView is a column with the mappings the generator will apply to it.
type ColumnView struct {
	introspect.Column
	EntityType     string `json:"entity_type"`
	ValidationType string `json:"validation_type"`
	Control        string `json:"control"`
	Indexed        bool   `json:"indexed"`
}

// TableView is the generator's view of one table.
type TableView struct {
	Table            string                  `json:"table"`
	Columns          []ColumnView            `json:"columns"`
	ForeignKeys      []introspect.ForeignKey `json:"foreign_keys"`
	LikelyLabelField string                  `json:"likely_label_field"`
	ActiveColumn     bool                    `json:"active_column"`
	Diagnostics      []string                `json:"diagnostics,omitempty"`
}

// ScaffoldView is a generation preview.
type ScaffoldView struct {
	*generator.Sources
	ReportYAML string `json:"report_yaml"`
}

func (s *Server) getConnect(c *gin.Context) {
	dbCfg := s.settings().Database
	dbCfg.Type = config.NormalizeDriver(dbCfg.Type)
	success(c, http.StatusOK, dbCfg, "")
}

func (s *Server) postConnect(c *gin.Context) {
	var req config.DBConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	driver, dsn, err := config.BuildDriverAndDSN(req)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid connection settings")
		return
	}
	timeout := req.TimeoutSeconds
	if timeout <= 0 {
		timeout = s.settings().Database.TimeoutSeconds
	}
	conn, err := s.connect(driver, dsn, timeout)
	if err != nil {
		logger.Error("connect to %s: %v", driver, err)
		fail(c, http.StatusInternalServerError, err, "Connection failed")
		return
	}
	tables, err := conn.TableNames(c.Request.Context())
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Warn("closing %s connection: %v", driver, cerr)
		}
		fail(c, http.StatusInternalServerError, err, "Listing tables failed")
		return
	}
	s.setActive(conn, req)
	success(c, http.StatusOK, gin.H{"driver": driver, "tables": tables}, "Connected")
}

func (s *Server) listTables(c *gin.Context) {
	p, _ := s.active()
	if p == nil {
		fail(c, http.StatusBadRequest, errNoProvider, "No schema")
		return
	}
	lister, ok := p.(introspect.TableLister)
	if !ok {
		fail(c, http.StatusNotImplemented, nil, "The active schema cannot list tables")
		return
	}
	tables, err := lister.TableNames(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Listing tables failed")
		return
	}
	success(c, http.StatusOK, tables, "")
}

func (s *Server) describeTable(c *gin.Context) {
	p, _ := s.active()
	if p == nil {
		fail(c, http.StatusBadRequest, errNoProvider, "No schema")
		return
	}
	settings := s.settings().Generator
	snap := tablemeta.NewSnapshot(p, settings.ForeignKeySuffix)
	meta, err := snap.Table(c.Request.Context(), c.Param("table"))
	if err != nil {
		fail(c, statusFor(err), err, "Describing table failed")
		return
	}

	view := TableView{
		Table:            meta.Table,
		ForeignKeys:      meta.ForeignKeys(),
		LikelyLabelField: meta.LikelyLabelField(),
		ActiveColumn:     meta.ActiveColumnPresent(),
		Diagnostics:      meta.Diagnostics(),
	}
	for _, col := range meta.Columns() {
		control, _ := meta.ColumnControl(col.Name)
		view.Columns = append(view.Columns, ColumnView{
			Column:         col,
			EntityType:     tablemeta.EntityType(col.Type, col.RawType),
			ValidationType: tablemeta.ValidationType(col.Type, col.RawType),
			Control:        control,
			Indexed:        meta.IsIndexed(col.Name),
		})
	}
	success(c, http.StatusOK, view, "")
}

func (s *Server) generate(c *gin.Context) {
	p, conn := s.active()
	if p == nil {
		fail(c, http.StatusBadRequest, errNoProvider, "No schema")
		return
	}
	var params scaffold.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	deps := generator.Deps{Provider: p, Settings: s.settings().Generator}
	if conn != nil {
		deps.Introspector = conn
	}
	src, err := generator.Run(c.Request.Context(), deps, params)
	if err != nil {
		fail(c, statusFor(err), err, "Generation failed")
		return
	}
	reportYAML, err := src.Report.ToYAML()
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Generation failed")
		return
	}
	success(c, http.StatusOK, ScaffoldView{Sources: src, ReportYAML: string(reportYAML)}, "Scaffold generated")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scaffold.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, introspect.ErrTableNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
