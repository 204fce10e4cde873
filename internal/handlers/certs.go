package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certview/internal/logger"
	"certview/internal/view"
	"certview/middleware"
)

// displayedCert is one rendered row in API form.
type displayedCert struct {
	KeyID      string `json:"key_id"`
	CreatedAt  string `json:"created_at"`
	Expires    string `json:"expires"`
	Principals string `json:"principals"`
	Message    string `json:"message"`
	Revoked    bool   `json:"revoked"`
}

type noticeResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Seq     uint64 `json:"seq"`
}

type certsResponse struct {
	Seq          uint64          `json:"seq"`
	ShowAll      bool            `json:"show_all"`
	State        string          `json:"state"`
	Pending      bool            `json:"pending"`
	Consistent   bool            `json:"consistent"`
	Notice       *noticeResponse `json:"notice"`
	Certificates []displayedCert `json:"certificates"`
}

// RegisterCertRoutes exposes the rendered table as JSON.
func RegisterCertRoutes(r chi.Router, console *Console) {
	r.Get("/api/certs", func(w http.ResponseWriter, req *http.Request) {
		snap := console.snapshot(searchQuery(req))
		resp := certsResponse{
			Seq:          snap.Marker.Seq,
			ShowAll:      snap.Marker.ShowAll,
			State:        console.Controller.State().String(),
			Pending:      console.Controller.Pending(),
			Consistent:   console.Controller.Consistent(),
			Certificates: make([]displayedCert, 0, len(snap.Rows)),
		}
		if notice := console.notice(); notice != nil {
			resp.Notice = &noticeResponse{Kind: notice.Kind, Message: notice.Message, Seq: notice.Seq}
		}
		for _, row := range snap.Rows {
			resp.Certificates = append(resp.Certificates, rowToCert(row))
		}
		writeJSON(w, req, http.StatusOK, resp)
	})
}

func rowToCert(row view.Row) displayedCert {
	cell := func(col int) view.Cell {
		if col < len(row.Cells) {
			return row.Cells[col]
		}
		return view.Cell{}
	}
	return displayedCert{
		KeyID:      cell(view.ColumnKeyID).Text,
		CreatedAt:  cell(view.ColumnCreatedAt).Text,
		Expires:    cell(view.ColumnExpires).Text,
		Principals: cell(view.ColumnPrincipals).Text,
		Message:    cell(view.ColumnMessage).Text,
		Revoked:    cell(view.ColumnRevoke).Control == nil,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.HTTPError(r.Method, r.URL.Path, http.StatusInternalServerError, err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to encode response")
	}
}
