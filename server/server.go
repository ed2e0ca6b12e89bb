// Package server exposes saved results and stored value tables over HTTP
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeu5/vacuum-world/store"
)

type ResultsServer struct {
	Addr   string
	ctx    context.Context
	server *http.Server

	dir   string
	store store.Store
}

// NewResultsServer serves the files under dir and the tables in s.
// The server shuts down when ctx is done.
func NewResultsServer(ctx context.Context, addr, dir string, s store.Store) *ResultsServer {
	rs := &ResultsServer{
		Addr:  addr,
		ctx:   ctx,
		dir:   dir,
		store: s,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", healthHandler)
	r.GET("/results", rs.handleList)
	r.GET("/results/*file", rs.handleFile)
	r.GET("/qtables", rs.handleKeys)
	r.GET("/qtables/:key", rs.handleTable)
	rs.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return rs
}

func (rs *ResultsServer) Handler() http.Handler {
	return rs.server.Handler
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (rs *ResultsServer) handleList(c *gin.Context) {
	files := make([]string, 0)
	err := filepath.WalkDir(rs.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(rs.dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sort.Strings(files)
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (rs *ResultsServer) handleFile(c *gin.Context) {
	name := c.Param("file")
	if strings.Contains(name, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid path"})
		return
	}
	p := filepath.Join(rs.dir, filepath.FromSlash(filepath.Clean("/"+name)))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.File(p)
}

func (rs *ResultsServer) handleKeys(c *gin.Context) {
	if rs.store == nil {
		c.JSON(http.StatusOK, gin.H{"keys": []string{}})
		return
	}
	keys, err := rs.store.Keys(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (rs *ResultsServer) handleTable(c *gin.Context) {
	if rs.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no store configured"})
		return
	}
	var raw json.RawMessage
	err := rs.store.Load(c.Request.Context(), c.Param("key"), &raw)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Data(http.StatusOK, "application/json", raw)
	}
}

// Run serves until the context is done
func (rs *ResultsServer) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- rs.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-rs.ctx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return rs.server.Shutdown(ctx)
	}
}
