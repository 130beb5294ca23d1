// Package ledgeranchor mirrors every confirmation-ledger entry onto a
// Hyperledger Fabric channel. The chaincode stores only the entry's digest,
// which makes the append-only audit trail externally verifiable without
// putting photos or user data on-chain.
package ledgeranchor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"unit-supply-api-server/config"
	"unit-supply-api-server/internal/models"

	fabconfig "github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
)

// Anchor holds the Fabric gateway connection.
type Anchor struct {
	Gateway  *gateway.Gateway
	Contract *gateway.Contract
	SDK      *fabsdk.FabricSDK
}

// Initialize connects to the Fabric network described by cfg and returns a
// ready Anchor.
func Initialize(cfg config.FabricConfig) (*Anchor, error) {
	os.Setenv("DISCOVERY_AS_LOCALHOST", "true")

	fsWallet, err := gateway.NewFileSystemWallet("wallet")
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if err := populateWallet(fsWallet, cfg.OrgName, cfg.UserName, cfg.UserCertPath, cfg.UserKeyDir); err != nil {
		return nil, fmt.Errorf("failed to populate wallet: %w", err)
	}

	sdk, err := fabsdk.New(fabconfig.FromFile(filepath.Clean(cfg.ConnectionProfile)))
	if err != nil {
		return nil, fmt.Errorf("failed to create fabsdk instance: %w", err)
	}

	gw, err := gateway.Connect(
		gateway.WithSDK(sdk),
		gateway.WithIdentity(fsWallet, cfg.UserName),
	)
	if err != nil {
		sdk.Close()
		return nil, fmt.Errorf("failed to connect to gateway: %w", err)
	}

	network, err := gw.GetNetwork(cfg.ChannelName)
	if err != nil {
		gw.Close()
		sdk.Close()
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	return &Anchor{
		Gateway:  gw,
		Contract: network.GetContract(cfg.ChaincodeName),
		SDK:      sdk,
	}, nil
}

// Close tears down the gateway connection.
func (a *Anchor) Close() {
	a.Gateway.Close()
	a.SDK.Close()
}

// AnchorConfirmation submits the entry's digest to the chaincode. The
// chaincode treats a repeated confirmation id as a no-op, so replays after
// partial failures are safe.
func (a *Anchor) AnchorConfirmation(ctx context.Context, c *models.DeliveryConfirmation) error {
	digest, err := Digest(c)
	if err != nil {
		return err
	}
	_, err = a.Contract.SubmitTransaction(
		"RecordConfirmation",
		c.ConfirmationID,
		c.Subject(),
		c.Type,
		digest,
		c.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
	)
	if err != nil {
		return fmt.Errorf("failed to submit transaction: %w", err)
	}
	return nil
}

// Digest returns the hex SHA-256 of the entry's canonical JSON form.
func Digest(c *models.DeliveryConfirmation) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func populateWallet(wallet *gateway.Wallet, orgName, userName, certPath, keyDir string) error {
	if wallet.Exists(userName) {
		return nil
	}

	cert, err := os.ReadFile(filepath.Clean(certPath))
	if err != nil {
		return err
	}

	keyPath, err := findPrivateKey(keyDir)
	if err != nil {
		return err
	}
	key, err := os.ReadFile(filepath.Clean(keyPath))
	if err != nil {
		return err
	}

	identity := gateway.NewX509Identity(orgName+"MSP", string(cert), string(key))
	return wallet.Put(userName, identity)
}

func findPrivateKey(dir string) (string, error) {
	keyPath := ""
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			keyPath = path
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if keyPath == "" {
		return "", fmt.Errorf("no private key found in directory %s", dir)
	}
	return keyPath, nil
}
