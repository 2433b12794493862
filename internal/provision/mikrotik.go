package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-routeros/routeros/v3"
)

// MikrotikConfig holds RouterOS API connection parameters.
type MikrotikConfig struct {
	Address     string // host:port, API port is 8728 by default
	Username    string
	Password    string
	AddressList string // optional firewall address-list for suspended subscribers
}

// Mikrotik implements Provisioner over the RouterOS API. Connections are
// dialed per call; the API is cheap to connect and the worker retries on
// failure, so holding a long-lived connection buys little.
type Mikrotik struct {
	config *MikrotikConfig
	logger *slog.Logger
}

// NewMikrotik creates a RouterOS-backed provisioner.
func NewMikrotik(config *MikrotikConfig, logger *slog.Logger) *Mikrotik {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mikrotik{
		config: config,
		logger: logger,
	}
}

// ApplyRestriction disables the subscriber's PPP secret and kicks any
// active session so the restriction takes effect immediately.
func (m *Mikrotik) ApplyRestriction(ctx context.Context, username string) error {
	client, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	secretID, err := m.findSecret(ctx, client, username)
	if err != nil {
		return err
	}

	if _, err := client.RunContext(ctx, "/ppp/secret/set", "=.id="+secretID, "=disabled=yes"); err != nil {
		return fmt.Errorf("failed to disable ppp secret for %s: %w", username, err)
	}

	if err := m.dropActiveSession(ctx, client, username); err != nil {
		return err
	}

	m.logger.Info("mikrotik: restriction applied", "username", username)
	return nil
}

// RemoveRestriction re-enables the subscriber's PPP secret and clears any
// address-list entry left by a suspension.
func (m *Mikrotik) RemoveRestriction(ctx context.Context, username string) error {
	client, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	secretID, err := m.findSecret(ctx, client, username)
	if err != nil {
		return err
	}

	if _, err := client.RunContext(ctx, "/ppp/secret/set", "=.id="+secretID, "=disabled=no"); err != nil {
		return fmt.Errorf("failed to enable ppp secret for %s: %w", username, err)
	}

	if err := m.clearAddressList(ctx, client, username); err != nil {
		return err
	}

	m.logger.Info("mikrotik: restriction removed", "username", username)
	return nil
}

func (m *Mikrotik) dial(ctx context.Context) (*routeros.Client, error) {
	client, err := routeros.DialContext(ctx, m.config.Address, m.config.Username, m.config.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to router %s: %w", m.config.Address, err)
	}
	return client, nil
}

func (m *Mikrotik) findSecret(ctx context.Context, client *routeros.Client, username string) (string, error) {
	reply, err := client.RunContext(ctx, "/ppp/secret/print", "?name="+username, "=.proplist=.id")
	if err != nil {
		return "", fmt.Errorf("failed to look up ppp secret for %s: %w", username, err)
	}
	if len(reply.Re) == 0 {
		return "", fmt.Errorf("no ppp secret found for %s", username)
	}
	return reply.Re[0].Map[".id"], nil
}

// dropActiveSession terminates the subscriber's live PPPoE session. If the
// address-list is configured, the session address is recorded there first so
// firewall rules can act on it.
func (m *Mikrotik) dropActiveSession(ctx context.Context, client *routeros.Client, username string) error {
	reply, err := client.RunContext(ctx, "/ppp/active/print", "?name="+username)
	if err != nil {
		return fmt.Errorf("failed to list active sessions for %s: %w", username, err)
	}

	for _, re := range reply.Re {
		if m.config.AddressList != "" {
			if addr := re.Map["address"]; addr != "" {
				_, err := client.RunContext(ctx, "/ip/firewall/address-list/add",
					"=list="+m.config.AddressList,
					"=address="+addr,
					"=comment="+username)
				if err != nil {
					m.logger.Warn("mikrotik: failed to add address-list entry",
						"username", username, "address", addr, "error", err)
				}
			}
		}

		if _, err := client.RunContext(ctx, "/ppp/active/remove", "=.id="+re.Map[".id"]); err != nil {
			return fmt.Errorf("failed to drop active session for %s: %w", username, err)
		}
	}

	return nil
}

func (m *Mikrotik) clearAddressList(ctx context.Context, client *routeros.Client, username string) error {
	if m.config.AddressList == "" {
		return nil
	}

	reply, err := client.RunContext(ctx, "/ip/firewall/address-list/print",
		"?list="+m.config.AddressList,
		"?comment="+username)
	if err != nil {
		return fmt.Errorf("failed to list address-list entries for %s: %w", username, err)
	}

	for _, re := range reply.Re {
		if _, err := client.RunContext(ctx, "/ip/firewall/address-list/remove", "=.id="+re.Map[".id"]); err != nil {
			return fmt.Errorf("failed to remove address-list entry for %s: %w", username, err)
		}
	}

	return nil
}
