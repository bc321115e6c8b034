package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/fileaccess/pkg/filesdk"
	"github.com/spf13/pflag"
)

type env struct {
	globals
	stdout io.Writer
}

func (e *env) client() *filesdk.Client { return filesdk.NewClient(e.server) }

// session wraps --token. Commands that need a login fail early without one.
func (e *env) session() (*filesdk.Session, error) {
	if e.token == "" {
		return nil, errors.New("no session token: run 'filesctl login' and pass --token or FILESCTL_TOKEN")
	}
	return e.client().NewSessionFromToken(e.token, time.Time{}), nil
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type command struct {
	path    []string
	name    string
	summary string
	flags   func(*pflag.FlagSet)
	run     func(ctx context.Context, e *env, args []string) error
}

var (
	userFlags struct {
		bootstrapToken string
		username       string
		password       string
	}
	loginFlags struct {
		username string
		password string
	}
	recordFlags struct {
		title      string
		openAccess bool
	}
	uploadFlags struct {
		contentType string
	}
	tokenFlags struct {
		days    int
		minutes int
		key     string
	}
	downloadFlags struct {
		jwt       string
		versionID string
		all       bool
		output    string
	}
)

var commands = []command{
	{
		path:    []string{"user", "create"},
		name:    "user create",
		summary: "provision a user (needs the bootstrap token)",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&userFlags.bootstrapToken, "bootstrap-token", os.Getenv("BOOTSTRAP_TOKEN"), "server bootstrap token")
			fs.StringVarP(&userFlags.username, "username", "u", "", "username")
			fs.StringVarP(&userFlags.password, "password", "p", os.Getenv("FILESCTL_PASSWORD"), "password")
		},
		run: runUserCreate,
	},
	{
		path:    []string{"login"},
		name:    "login",
		summary: "exchange a username and password for a session token",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVarP(&loginFlags.username, "username", "u", "", "username")
			fs.StringVarP(&loginFlags.password, "password", "p", os.Getenv("FILESCTL_PASSWORD"), "password")
		},
		run: runLogin,
	},
	{
		path:    []string{"record", "create"},
		name:    "record create",
		summary: "create a record and its bucket",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVarP(&recordFlags.title, "title", "t", "", "record title")
			fs.BoolVar(&recordFlags.openAccess, "open-access", false, "make the files public")
		},
		run: runRecordCreate,
	},
	{
		path:    []string{"upload"},
		name:    "upload",
		summary: "upload <bucket-id> <key> <file>",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&uploadFlags.contentType, "content-type", "", "declared content type (sniffed when empty)")
		},
		run: runUpload,
	},
	{
		path:    []string{"token"},
		name:    "token",
		summary: "token <record-id>: mint a temporary access token",
		flags: func(fs *pflag.FlagSet) {
			fs.IntVar(&tokenFlags.days, "days", -1, "lifetime in days (server default when negative)")
			fs.IntVar(&tokenFlags.minutes, "minutes", -1, "additional lifetime in minutes")
			fs.StringVar(&tokenFlags.key, "key", "", "also print the download link of this file")
		},
		run: runToken,
	},
	{
		path:    []string{"download"},
		name:    "download",
		summary: "download <bucket-id> [key]: fetch a file, or every file with --all",
		flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&downloadFlags.jwt, "jwt", "", "temporary access token")
			fs.StringVar(&downloadFlags.versionID, "version", "", "version id (head when empty)")
			fs.BoolVar(&downloadFlags.all, "all", false, "download the whole bucket as files.zip")
			fs.StringVarP(&downloadFlags.output, "output", "o", "", "output path (server file name when empty, - for stdout)")
		},
		run: runDownload,
	},
}

func runUserCreate(ctx context.Context, e *env, _ []string) error {
	req := filesdk.CreateUserRequest{Username: userFlags.username, Password: userFlags.password}
	if errs := req.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid user: %v", errs)
	}

	u, err := e.client().CreateUser(ctx, userFlags.bootstrapToken, req)
	if err != nil {
		return err
	}
	return e.printJSON(u)
}

func runLogin(ctx context.Context, e *env, _ []string) error {
	req := filesdk.LoginRequest{Username: loginFlags.username, Password: loginFlags.password}
	if errs := req.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid login: %v", errs)
	}

	s, err := e.client().Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return e.printJSON(filesdk.SessionResponse{
		AccessToken: s.AccessToken(),
		TokenType:   "Bearer",
		ExpiresAt:   s.ExpiresAt(),
		UserID:      s.UserID(),
	})
}

func runRecordCreate(ctx context.Context, e *env, _ []string) error {
	s, err := e.session()
	if err != nil {
		return err
	}

	req := filesdk.CreateRecordRequest{Title: recordFlags.title, OpenAccess: recordFlags.openAccess}
	if errs := req.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid record: %v", errs)
	}

	rec, err := s.CreateRecord(ctx, req)
	if err != nil {
		return err
	}
	return e.printJSON(rec)
}

func runUpload(ctx context.Context, e *env, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: filesctl upload <bucket-id> <key> <file>")
	}
	s, err := e.session()
	if err != nil {
		return err
	}

	f, err := os.Open(args[2])
	if err != nil {
		return err
	}
	defer f.Close()

	obj, err := s.Upload(ctx, args[0], args[1], uploadFlags.contentType, f)
	if err != nil {
		return err
	}
	return e.printJSON(obj)
}

func runToken(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: filesctl token <record-id>")
	}
	s, err := e.session()
	if err != nil {
		return err
	}

	ta, err := s.IssueTempAccess(ctx, args[0], tokenFlags.days, tokenFlags.minutes)
	if err != nil {
		return err
	}
	if tokenFlags.key == "" {
		return e.printJSON(ta)
	}

	rec, err := s.GetRecord(ctx, args[0])
	if err != nil {
		return err
	}
	return e.printJSON(struct {
		*filesdk.TempAccessResponse
		URL string `json:"url"`
	}{ta, e.client().TempAccessURL(rec.BucketID, tokenFlags.key, ta.JWT)})
}

func runDownload(ctx context.Context, e *env, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: filesctl download <bucket-id> [key]")
	}
	bucketID := args[0]
	if !downloadFlags.all && len(args) != 2 {
		return errors.New("a key is required unless --all is set")
	}

	// The session is optional here: a token alone is enough.
	var (
		d   *filesdk.Download
		err error
	)
	s, _ := e.session()
	switch {
	case downloadFlags.all && s != nil:
		d, err = s.DownloadBucket(ctx, bucketID, downloadFlags.jwt)
	case downloadFlags.all:
		d, err = e.client().DownloadBucket(ctx, bucketID, downloadFlags.jwt)
	default:
		opts := filesdk.DownloadOptions{VersionID: downloadFlags.versionID, JWT: downloadFlags.jwt}
		if s != nil {
			d, err = s.DownloadObject(ctx, bucketID, args[1], opts)
		} else {
			d, err = e.client().DownloadObject(ctx, bucketID, args[1], opts)
		}
	}
	if err != nil {
		return err
	}
	defer d.Body.Close()

	if downloadFlags.output == "-" {
		_, err := io.Copy(e.stdout, d.Body)
		return err
	}

	out := downloadFlags.output
	if out == "" {
		out = filepath.Base(d.Filename)
		if out == "." || out == "/" || out == "" {
			out = "download"
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, d.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "wrote %s (%d bytes)\n", out, n)
	return nil
}
