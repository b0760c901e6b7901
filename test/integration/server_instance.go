package integration

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cedadev/remoteuser/pkg/config"
	"github.com/cedadev/remoteuser/pkg/server"
	"github.com/cedadev/remoteuser/pkg/server/endpoints"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// ServerConfig holds configuration for a test server instance
type ServerConfig struct {
	Authenticators        []string
	RequireAuthentication bool
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	cfg := config.Default()
	return ServerConfig{
		Authenticators:        cfg.Authenticators,
		RequireAuthentication: cfg.RequireAuthentication,
	}
}

// ServerInstance represents a running server for a single scenario
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	Config        ServerConfig
	cancel        context.CancelFunc
	listener      net.Listener
	serverProcess *exec.Cmd // For binary mode
}

// StartServer starts a server against the test database, in-process or
// from the binary depending on how the suite was started.
func StartServer(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc, cfg)
	}
	return startBinaryServerInstance(tc, cfg)
}

func startInlineServerInstance(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	serverCfg := config.Default()
	serverCfg.Authenticators = cfg.Authenticators
	serverCfg.RequireAuthentication = cfg.RequireAuthentication
	serverCfg.LogLevel = "warning"

	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := server.NewServer(serverCfg, server.Options{
		Host:        "127.0.0.1",
		Port:        strconv.Itoa(port),
		SessionKey:  tc.SessionKey,
		DB:          tc.DB,
		AuditWriter: io.Discard,
		Log:         log,
		Version:     "integration",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on port %d: %w", port, err)
	}

	instance := &ServerInstance{
		Server:    s,
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
		Config:    cfg,
		listener:  listener,
	}

	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

func startBinaryServerInstance(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))
	portStr := strconv.Itoa(port)

	ctx, cancel := context.WithCancel(context.Background())

	// Migrations already ran in the test setup
	cmd := exec.CommandContext(ctx, tc.BinaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", portStr)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+tc.DatabaseURL,
		"REMOTEUSER_SESSION_KEY="+base64.StdEncoding.EncodeToString(tc.SessionKey),
		config.EnvPrefix+"AUTHENTICATORS="+strings.Join(cfg.Authenticators, ","),
		config.EnvPrefix+"REQUIRE_AUTHENTICATION="+strconv.FormatBool(cfg.RequireAuthentication),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:          port,
		Config:        cfg,
		cancel:        cancel,
		serverProcess: cmd,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.listener != nil {
		_ = si.listener.Close()
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
