// Command storage-server runs a local-disk Storage+Command pair and
// registers it with a naming server at startup, per spec.md §4.F/§6.
//
// Grounded on cmd/musclefs/musclefs.go's main function sequencing (load
// config, build store, start listener, install signal handler).
package main

import (
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/nsfs/config"
	"github.com/nicolagi/nsfs/naming"
	"github.com/nicolagi/nsfs/netutil"
	nsfspath "github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
)

func main() {
	if err := agent.Listen(agent.Options{}); err != nil {
		log.WithError(err).Warning("could not start gops agent")
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	base := flag.String("base", config.DefaultBaseDirectoryPath, "base directory for configuration")
	id := flag.String("id", "", "this server's registration ID, must be unique among storage servers")
	flag.Parse()
	if *id == "" {
		log.Fatal("-id is required")
	}

	cfg, err := config.Load(*base)
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}

	var mirror *storage.S3Mirror
	if cfg.Storage == "s3" {
		mirror = storage.NewS3Mirror(cfg)
	}
	fs := storage.NewFileStore(cfg.RootDirectory, mirror)

	storageSk, err := storage.NewStorageSkeleton(fs, cfg.StorageListenNet, cfg.StorageListenAddr)
	if err != nil {
		log.WithError(err).Fatal("could not build Storage skeleton")
	}
	if err := storageSk.Start(); err != nil {
		log.WithError(err).Fatal("could not start Storage skeleton")
	}
	defer storageSk.Stop()

	commandSk, err := storage.NewCommandSkeleton(fs, cfg.StorageListenNet, "")
	if err != nil {
		log.WithError(err).Fatal("could not build Command skeleton")
	}
	if err := commandSk.Start(); err != nil {
		log.WithError(err).Fatal("could not start Command skeleton")
	}
	defer commandSk.Stop()

	_, storageAddr, _ := storageSk.Address()
	_, commandAddr, _ := commandSk.Address()
	ref := storage.Ref{ID: *id, StorageAddr: storageAddr, CommandAddr: commandAddr}

	if err := registerAndReconcile(cfg, ref); err != nil {
		log.WithError(err).Fatal("could not register with naming server")
	}

	log.WithFields(log.Fields{
		"id":      ref.ID,
		"storage": storageAddr,
		"command": commandAddr,
	}).Info("storage-server listening")

	sig := <-sigc
	log.WithField("signal", sig).Info("shutting down")
	agent.Close()
}

// registerAndReconcile reports every file already on local disk to the
// naming server and deletes any it names as a duplicate, pruning empty
// directories left behind. A registration log prevents re-registering (and
// re-reconciling) on every restart against the same naming server.
func registerAndReconcile(cfg *config.C, ref storage.Ref) error {
	if alreadyRegistered(cfg.RegistrationLogPath(), ref) {
		log.Info("already registered, skipping reconciliation")
		return nil
	}

	if err := netutil.WaitForListener(cfg.NamingRegistrationNet, cfg.NamingRegistrationAddr, 30*time.Second); err != nil {
		log.WithError(err).Warning("naming server registration port not reachable yet, registering anyway")
	}

	if err := os.MkdirAll(cfg.RootDirectory, 0755); err != nil {
		return err
	}
	paths, err := nsfspath.List(cfg.RootDirectory)
	if err != nil {
		return err
	}

	client := naming.NewRegistrationStub(cfg.NamingRegistrationNet, cfg.NamingRegistrationAddr)
	duplicates, err := client.Register(ref, paths)
	if err != nil {
		return err
	}

	for _, p := range duplicates {
		full := filepath.Join(cfg.RootDirectory, filepath.FromSlash(p.String()))
		if err := os.Remove(full); err != nil {
			log.WithError(err).WithField("path", p.String()).Warning("could not remove duplicate")
			continue
		}
		pruneEmptyParents(cfg.RootDirectory, filepath.Dir(full))
	}

	return markRegistered(cfg.RegistrationLogPath(), ref)
}

func pruneEmptyParents(root, dir string) {
	for dir != root && len(dir) > len(root) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func alreadyRegistered(logPath string, ref storage.Ref) bool {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return false
	}
	return string(data) == ref.ID
}

func markRegistered(logPath string, ref storage.Ref) error {
	return os.WriteFile(logPath, []byte(ref.ID), 0644)
}
