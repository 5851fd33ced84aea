package http

import (
	"bytes"
	"net/http"

	"tally/internal/backup"
	"tally/internal/log"
)

func (s *Server) attachment(w http.ResponseWriter, kind, ext string) {
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.FileName(kind, s.now().In(s.loc), ext)+`"`)
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	doc := backup.NewDocument(s.ledger.Snapshot(), s.now())

	var buf bytes.Buffer
	if err := backup.Write(&buf, doc); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	s.attachment(w, "backup", "json")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleImportBackup replaces the collections present in the uploaded
// document and keeps the others.
func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupBytes)
	doc, err := backup.Read(r.Body)
	if err != nil {
		writeError(w, r, log.OpImport, badRequest("%v", err))
		return
	}

	if err := s.ledger.Import(r.Context(), doc.Apply(s.ledger.Snapshot())); err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	snap := s.ledger.Snapshot()
	OK(w, map[string]int{
		"transactions": len(snap.Transactions),
		"categories":   len(snap.Categories),
		"budgets":      len(snap.Budgets),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := backup.WriteCSV(&buf, s.ledger.Snapshot(), s.loc); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	s.attachment(w, "transactions", "csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSeedDemo(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.SeedDemo(r.Context()); err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	NoContent(w)
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Clear(r.Context()); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NoContent(w)
}
