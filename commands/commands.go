// Package commands implements the strategyboard subcommands.
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"strategyboard/app/config"
	"strategyboard/app/controllers"
	"strategyboard/app/repositories"
	"strategyboard/app/routes"
	"strategyboard/app/services"
	"strategyboard/app/strategies"
)

// ErrBadgerOnly is returned by maintenance commands run against postgres.
var ErrBadgerOnly = errors.New("command is only available for the badger driver")

// openPosts opens the configured post store. The returned func releases it.
func openPosts(ctx context.Context, cfg config.Config) (repositories.PostRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := repositories.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewPostgresPostRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	default:
		store, err := repositories.OpenStore(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return store.Posts(), func() {
			if err := store.Close(); err != nil {
				log.Printf("Failed to close Badger DB: %v", err)
			}
		}, nil
	}
}

// NewHandler wires the repository into the HTTP router.
func NewHandler(postRepo repositories.PostRepository) http.Handler {
	postService := services.NewPostService(postRepo, strategies.NewDefaultRegistry(postRepo))
	return routes.SetupRoutes(controllers.NewPostController(postService))
}

func newServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Serve runs the API on cfg.Addr until ctx is canceled.
func Serve(ctx context.Context, cfg config.Config) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	return ServeListener(ctx, cfg, ln)
}

// ServeListener runs the API on ln until ctx is canceled, then drains
// in-flight requests for at most cfg.ShutdownTimeout.
func ServeListener(ctx context.Context, cfg config.Config, ln net.Listener) error {
	postRepo, closeStore, err := openPosts(ctx, cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer closeStore()

	if cfg.SeedOnStart {
		if _, err := services.NewSeeder(postRepo).Seed(ctx, cfg.SeedCount); err != nil {
			ln.Close()
			return err
		}
	}

	srv := newServer(NewHandler(postRepo))
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting strategyboard on %s (driver %s)", ln.Addr(), cfg.StoreDriver)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

// Seed fills an empty store with n sample posts.
func Seed(ctx context.Context, cfg config.Config, n int, out io.Writer) error {
	postRepo, closeStore, err := openPosts(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	created, err := services.NewSeeder(postRepo).Seed(ctx, n)
	if err != nil {
		return err
	}
	if created == 0 {
		fmt.Fprintln(out, "Store already holds posts, nothing seeded")
		return nil
	}
	fmt.Fprintf(out, "Seeded %d posts\n", created)
	return nil
}

// Clean removes the Badger database after confirmation.
func Clean(cfg config.Config, in io.Reader, out io.Writer) error {
	if cfg.StoreDriver != config.DriverBadger {
		return ErrBadgerOnly
	}
	if _, err := os.Stat(cfg.BadgerPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}

	if !confirm(in, out, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	if err := os.RemoveAll(cfg.BadgerPath); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// BackupDir is where backups of the Badger database are written.
func BackupDir(cfg config.Config) string {
	return filepath.Join(filepath.Dir(cfg.BadgerPath), "backups")
}

// Backup writes a full Badger backup and returns its path.
func Backup(cfg config.Config, out io.Writer) (string, error) {
	if cfg.StoreDriver != config.DriverBadger {
		return "", ErrBadgerOnly
	}
	if _, err := os.Stat(cfg.BadgerPath); os.IsNotExist(err) {
		return "", fmt.Errorf("no database exists at %s", cfg.BadgerPath)
	}

	backupDir := BackupDir(cfg)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	store, err := repositories.OpenStore(cfg.BadgerPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	if err := writeBackup(store, f); err != nil {
		os.Remove(backupFile)
		return "", err
	}

	fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// writeBackup streams the store into w and closes it. A failed close means
// the backup may be incomplete.
func writeBackup(store *repositories.Store, w io.WriteCloser) error {
	if _, err := store.Backup(w); err != nil {
		w.Close()
		return fmt.Errorf("backup database: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close backup file: %w", err)
	}
	return nil
}

// Restore replaces the Badger database with the contents of backupFile,
// asking first when a database already exists. The backup is loaded into a
// staging directory and swapped in only once it loaded cleanly, so a bad
// backup leaves the current database untouched.
func Restore(cfg config.Config, backupFile string, in io.Reader, out io.Writer) error {
	if cfg.StoreDriver != config.DriverBadger {
		return ErrBadgerOnly
	}
	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	_, statErr := os.Stat(cfg.BadgerPath)
	exists := statErr == nil
	if exists && !confirm(in, out, "Existing database found. Do you want to replace it?") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	staging := cfg.BadgerPath + ".restore-" + suffix
	if err := loadBackup(staging, f); err != nil {
		os.RemoveAll(staging)
		return err
	}

	if exists {
		previous := cfg.BadgerPath + ".previous-" + suffix
		if err := os.Rename(cfg.BadgerPath, previous); err != nil {
			os.RemoveAll(staging)
			return fmt.Errorf("move existing database aside: %w", err)
		}
		if err := os.Rename(staging, cfg.BadgerPath); err != nil {
			if rbErr := os.Rename(previous, cfg.BadgerPath); rbErr != nil {
				log.Printf("Failed to put back the previous database from %s: %v", previous, rbErr)
			}
			os.RemoveAll(staging)
			return fmt.Errorf("swap in restored database: %w", err)
		}
		if err := os.RemoveAll(previous); err != nil {
			log.Printf("Failed to remove previous database at %s: %v", previous, err)
		}
	} else if err := os.Rename(staging, cfg.BadgerPath); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("move restored database into place: %w", err)
	}

	fmt.Fprintln(out, "Database restored successfully")
	return nil
}

// loadBackup opens a fresh store at dir, loads r into it and closes it.
func loadBackup(dir string, r io.Reader) error {
	store, err := repositories.OpenStore(dir)
	if err != nil {
		return err
	}
	if err := store.Restore(r); err != nil {
		store.Close()
		return fmt.Errorf("restore database: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close restored database: %w", err)
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.TrimSpace(scanner.Text())
	return answer == "y" || answer == "Y"
}
