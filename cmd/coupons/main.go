// Command coupons adds refuel coupons to the hunt database.
//
//	coupons [-db path] [-file codes.txt] [-generate n] [code ...]
//
// Codes come from the arguments, from a file with one code per line, and
// from -generate, which creates n random codes and prints them. Codes that
// already exist are left untouched.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/playperu/codexhunt/internal/database"
	"github.com/playperu/codexhunt/internal/migrations"
	"github.com/playperu/codexhunt/internal/random"
	"github.com/playperu/codexhunt/internal/store"
)

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

type envConfig struct {
	DBPath string `env:"DB_PATH" envDefault:"data/codexhunt.db"`
}

type options struct {
	dbPath string
	codes  []string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stdout)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, opts.dbPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return addCoupons(ctx, db, opts.codes, stderr)
}

// parseOptions collects codes from args, the -file list and -generate. Codes
// it generates are printed to stdout.
func parseOptions(args []string, stdout io.Writer) (options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return options{}, fmt.Errorf("loading .env: %w", err)
	}
	defaults, err := env.ParseAs[envConfig]()
	if err != nil {
		return options{}, fmt.Errorf("parsing environment: %w", err)
	}

	fs := flag.NewFlagSet("coupons", flag.ContinueOnError)
	dbPath := fs.String("db", defaults.DBPath, "SQLite database path")
	file := fs.String("file", "", "file with one coupon code per line")
	generate := fs.Int("generate", 0, "number of random codes to create")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	codes := fs.Args()
	if *file != "" {
		fromFile, err := readCodes(*file)
		if err != nil {
			return options{}, err
		}
		codes = append(codes, fromFile...)
	}
	if *generate > 0 {
		src, err := random.NewSeeded()
		if err != nil {
			return options{}, err
		}
		for range *generate {
			code := newCode(src)
			fmt.Fprintln(stdout, code)
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return options{}, fmt.Errorf("no coupon codes given")
	}
	return options{dbPath: *dbPath, codes: codes}, nil
}

func addCoupons(ctx context.Context, db *sql.DB, codes []string, stderr io.Writer) error {
	added, err := store.New(db).AddCoupons(ctx, codes)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "added %d of %d coupons\n", added, len(codes))
	return nil
}

func readCodes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var codes []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return codes, nil
}

func newCode(src *random.Source) string {
	var b strings.Builder
	for range codeLength {
		b.WriteByte(codeAlphabet[src.IntN(len(codeAlphabet))])
	}
	return b.String()
}
