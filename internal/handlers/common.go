package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	xhttp "github.com/milhasdesk/points-admin/pkg/http"
)

// Every endpoint answers with the same envelope: {"ok":true,"data":...}
// or {"ok":false,"error":"..."}.
type envelope struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeData(ctx *xhttp.RequestCtx, status int, data any) {
	writeJSON(ctx, status, envelope{OK: true, Data: data})
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, envelope{OK: false, Error: msg})
}

func paramID(ctx *xhttp.RequestCtx) (int64, error) {
	v, ok := ctx.UserValue("id").(string)
	if !ok || v == "" {
		return 0, errors.New("missing id")
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func apiKey(ctx *xhttp.RequestCtx) string {
	return string(ctx.Request.Header.Peek("X-API-Key"))
}
