// Command naming-server runs the directory tree, lock manager, replication
// controller and registration service described by spec.md §4: one process
// exposing the client-visible Service interface on one port and the
// storage-server-visible Registration interface on another.
//
// Grounded on cmd/musclefs/musclefs.go's main function shape (gops agent,
// flag-driven base directory, config.Load, signal-driven shutdown), stripped
// of everything 9P-specific since the client transport here is rmi, not 9P.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/nsfs/config"
	"github.com/nicolagi/nsfs/naming"
	"github.com/nicolagi/nsfs/netutil"
	"github.com/nicolagi/nsfs/replicate"
	"github.com/nicolagi/nsfs/tree"
)

// preparePort clears a stale unix socket left by a previous, uncleanly
// killed run, so the skeleton's own net.Listen doesn't fail with "address
// already in use" against a socket file nothing is listening on any more.
func preparePort(network, address string) error {
	if network != "unix" || address == "" {
		return nil
	}
	ln, err := netutil.Listen(network, address)
	if err != nil {
		return err
	}
	return ln.Close()
}

func main() {
	if err := agent.Listen(agent.Options{}); err != nil {
		log.WithError(err).Warning("could not start gops agent")
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	base := flag.String("base", config.DefaultBaseDirectoryPath, "base directory for configuration")
	flag.Parse()

	cfg, err := config.Load(*base)
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}

	t := tree.New(replicate.NewController(cfg.ReplicationFactor), tree.NewCommander())
	server := naming.NewServer(t)

	if err := preparePort(cfg.ServiceListenNet, cfg.ServiceListenAddr); err != nil {
		log.WithError(err).Fatal("could not prepare Service listen address")
	}
	serviceSk, err := naming.NewServiceSkeleton(server, cfg.ServiceListenNet, cfg.ServiceListenAddr)
	if err != nil {
		log.WithError(err).Fatal("could not build Service skeleton")
	}
	if err := serviceSk.Start(); err != nil {
		log.WithError(err).Fatal("could not start Service skeleton")
	}
	defer serviceSk.Stop()

	if err := preparePort(cfg.RegistrationListenNet, cfg.RegistrationListenAddr); err != nil {
		log.WithError(err).Fatal("could not prepare Registration listen address")
	}
	registrationSk, err := naming.NewRegistrationSkeleton(server, cfg.RegistrationListenNet, cfg.RegistrationListenAddr)
	if err != nil {
		log.WithError(err).Fatal("could not build Registration skeleton")
	}
	if err := registrationSk.Start(); err != nil {
		log.WithError(err).Fatal("could not start Registration skeleton")
	}
	defer registrationSk.Stop()

	serviceNet, serviceAddr, _ := serviceSk.Address()
	registrationNet, registrationAddr, _ := registrationSk.Address()
	log.WithFields(log.Fields{
		"service":      serviceNet + "!" + serviceAddr,
		"registration": registrationNet + "!" + registrationAddr,
	}).Info("naming-server listening")

	sig := <-sigc
	log.WithField("signal", sig).Info("shutting down")
	agent.Close()
}
