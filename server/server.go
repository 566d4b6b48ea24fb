package server

import (
	"crypto/tls"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/ragone/handlers"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

type Config struct {
	Domains      []string
	CertCacheDir string
	HTTPPort     string
	HTTPSPort    string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRoutes(chat *handlers.ChatHandler, upload *handlers.UploadHandler, documents *handlers.DocumentsHandler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Handle("/chat", chat).Methods("POST")
	api.Handle("/upload", upload).Methods("POST")
	api.HandleFunc("/documents", documents.List).Methods("GET")
	api.HandleFunc("/documents/delete", documents.Delete).Methods("POST")

	return r
}

// ServeProduction runs the server behind autocert-managed TLS.
func ServeProduction(n *negroni.Negroni, cfg Config) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	// Port 80 only answers ACME "http-01" challenges and redirects everything
	// else to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided by autocert.
	log.Fatal(err)
}

// ServeDevelopment runs a plain HTTP listener.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
