package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"websage/controllers"
	"websage/services/scraper"
	"websage/utils/types"
)

func CrawlRoutes(ctrl *controllers.CrawlController) chi.Router {
	r := chi.NewRouter()

	// POST /crawl : crawl and index a site, blocking until done
	r.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.CrawlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		if req.URL == "" {
			return nil, http.StatusBadRequest, errors.New("url is required")
		}

		resp, err := ctrl.Crawl(r.Context(), req, nil)
		if err != nil {
			if errors.Is(err, scraper.ErrNoPages) {
				return nil, http.StatusUnprocessableEntity, err
			}
			return nil, http.StatusInternalServerError, err
		}
		return resp, http.StatusOK, nil
	}))

	// GET /crawl/ws : same operation with live progress events; the client
	// sends one CrawlRequest and receives ProgressEvent frames, then a final
	// frame carrying either the result or an error
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var req types.CrawlRequest
		if err := json.Unmarshal(data, &req); err != nil || req.URL == "" {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid crawl request"}`))
			return
		}

		events := make(chan types.ProgressEvent, 64)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for ev := range events {
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
					return
				}
			}
		}()

		resp, err := ctrl.Crawl(ctx, req, events)
		close(events)
		<-writerDone

		if err != nil {
			payload, _ := json.Marshal(map[string]string{"error": err.Error()})
			conn.Write(ctx, websocket.MessageText, payload)
			conn.Close(websocket.StatusInternalError, "crawl failed")
			return
		}

		payload, _ := json.Marshal(map[string]any{"result": resp})
		conn.Write(ctx, websocket.MessageText, payload)
		conn.Close(websocket.StatusNormalClosure, "")
	})

	return r
}
