package test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Request is a request seen by a fake BrAPI Server.
type Request struct {
	Method   string
	Path     string
	Page     int
	PageSize int
}

// Server is a fake BrAPI v1 server. Paths are relative to Endpoint, e.g.
// "studies/s1/observationunits".
type Server struct {
	*httptest.Server

	// Endpoint is the base URL to configure a client with.
	Endpoint string

	// OmitTotalPages makes paginated responses announce only totalCount.
	OmitTotalPages bool

	// MaxPageSize caps the page size of paginated responses when positive.
	MaxPageSize int

	mu       sync.Mutex
	lists    map[string][]json.RawMessage
	objects  map[string]json.RawMessage
	statuses map[string][]int
	requests []Request
}

// NewServer starts a new fake BrAPI server. Close it when done.
func NewServer() *Server {
	s := &Server{
		lists:    make(map[string][]json.RawMessage),
		objects:  make(map[string]json.RawMessage),
		statuses: make(map[string][]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	s.Endpoint = s.Server.URL + "/brapi/v1/"
	return s
}

// AddList serves items, each a JSON object, as a paginated resource.
func (s *Server) AddList(path string, items ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := make([]json.RawMessage, len(items))
	for i, it := range items {
		l[i] = json.RawMessage(it)
	}
	s.lists[path] = l
}

// AddObject serves obj, a JSON object, as a single resource. Its key order is
// preserved on the wire.
func (s *Server) AddObject(path, obj string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = json.RawMessage(obj)
}

// FailWith makes the next requests to path answer with the given statuses,
// one per request, before serving normally again.
func (s *Server) FailWith(path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = append(s.statuses[path], statuses...)
}

// Requests returns the requests seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]Request, len(s.requests))
	copy(ret, s.requests)
	return ret
}

// Pages returns the page numbers requested for path, in order.
func (s *Server) Pages(path string) []int {
	pages := []int{}
	for _, r := range s.Requests() {
		if r.Path == path {
			pages = append(pages, r.Page)
		}
	}
	return pages
}

type pagination struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  *int `json:"totalPages,omitempty"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/brapi/v1/")
	req := Request{Method: r.Method, Path: path, PageSize: 1000}
	if r.Method == http.MethodGet {
		req.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
		if ps, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && ps > 0 {
			req.PageSize = ps
		}
	} else {
		body := struct {
			Page     int `json:"page"`
			PageSize int `json:"pageSize"`
		}{}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &body); err == nil {
			req.Page = body.Page
			if body.PageSize > 0 {
				req.PageSize = body.PageSize
			}
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	var status int
	if st := s.statuses[path]; len(st) > 0 {
		status, s.statuses[path] = st[0], st[1:]
	}
	list, isList := s.lists[path]
	obj, isObj := s.objects[path]
	omit := s.OmitTotalPages
	if s.MaxPageSize > 0 && req.PageSize > s.MaxPageSize {
		req.PageSize = s.MaxPageSize
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case status != 0:
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"metadata":{"status":[{"message":"status %d"}]}}`, status)
	case isObj:
		fmt.Fprintf(w, `{"metadata":{"pagination":{"currentPage":0,"pageSize":0,"totalCount":1,"totalPages":1}},"result":%s}`, obj)
	case isList:
		pg := pagination{CurrentPage: req.Page, PageSize: req.PageSize, TotalCount: len(list)}
		tp := (len(list) + req.PageSize - 1) / req.PageSize
		if !omit {
			pg.TotalPages = &tp
		}
		start, end := req.Page*req.PageSize, (req.Page+1)*req.PageSize
		if start > len(list) {
			start = len(list)
		}
		if end > len(list) {
			end = len(list)
		}
		resp := struct {
			Metadata struct {
				Pagination pagination `json:"pagination"`
			} `json:"metadata"`
			Result struct {
				Data []json.RawMessage `json:"data"`
			} `json:"result"`
		}{}
		resp.Metadata.Pagination = pg
		resp.Result.Data = list[start:end]
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"metadata":{"status":[{"message":"%s not found"}]}}`, path)
	}
}
