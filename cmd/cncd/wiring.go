package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/go-redis/redis/v8"
	"golang.org/x/term"

	"github.com/ieee8021/tsn-cnc/internal/controller"
	"github.com/ieee8021/tsn-cnc/internal/northbound"
	"github.com/ieee8021/tsn-cnc/internal/scheduler"
	"github.com/ieee8021/tsn-cnc/internal/southbound"
	"github.com/ieee8021/tsn-cnc/internal/storage"
	"github.com/ieee8021/tsn-cnc/internal/storage/filestore"
	"github.com/ieee8021/tsn-cnc/internal/storage/redisstore"
	"github.com/ieee8021/tsn-cnc/internal/topology"
	"github.com/ieee8021/tsn-cnc/pkg/cncsettings"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// buildController wires settings into a controller with the reference
// collaborator set: in-process northbound, NETCONF southbound, file or
// Redis storage, file-loaded topology, and the fixed-latency scheduler.
func buildController(s *cncsettings.Settings, notify func(kind string, content tsn.NotificationContent)) (*controller.Controller, *northbound.InProcessAdapter, error) {
	var store storage.Store
	if s.RedisAddr != "" {
		store = redisstore.New(redis.NewClient(&redis.Options{Addr: s.RedisAddr}))
	} else {
		store = filestore.New(s.GetStorageDir())
	}

	if s.TopologyFile == "" {
		return nil, nil, fmt.Errorf("no topology_file configured (set it in %s)", cncsettings.DefaultSettingsPath())
	}
	topo := topology.NewFileAdapter(s.TopologyFile)
	topo.DefaultUsername = s.NETCONFUser
	topo.DefaultPassword = s.NETCONFPassword
	topo.DefaultPort = s.GetNETCONFPort()

	north := northbound.NewInProcessAdapter(notify)
	c := controller.New(
		tsn.DomainID(s.GetDomainID()),
		s.GetComputeQueueDepth(),
		north,
		southbound.New(),
		store,
		topo,
		scheduler.New(),
	)
	return c, north, nil
}

// promptNETCONFPassword reads the fallback NETCONF password from the
// controlling terminal without echo.
func promptNETCONFPassword() (string, error) {
	fmt.Fprint(os.Stderr, "NETCONF password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
