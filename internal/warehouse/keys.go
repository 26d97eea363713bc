package warehouse

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/segminerals/ownerportal/internal/config"
)

// loadPrivateKey resolves the warehouse RSA key: a PEM file on disk when a
// path is configured, otherwise the configured AWS Secrets Manager secret.
func loadPrivateKey(ctx context.Context, cfg config.WarehouseConfig, aws config.AWSConfig) (*rsa.PrivateKey, error) {
	if cfg.PrivateKeyPath != "" {
		return keyFromFile(cfg.PrivateKeyPath, cfg.PrivateKeyPassphrase)
	}
	if cfg.PrivateKeySecretID != "" {
		return keyFromSecretsManager(ctx, cfg.PrivateKeySecretID, cfg.PrivateKeyPassphrase, aws.Region)
	}
	return nil, &ConfigError{Missing: []string{"private_key_path or private_key_secret_id"}}
}

func keyFromFile(path, passphrase string) (*rsa.PrivateKey, error) {
	expanded := expandHome(path)
	raw, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read warehouse private key %s: %w", expanded, err)
	}
	return parsePEMKey(raw, passphrase)
}

func keyFromSecretsManager(ctx context.Context, secretID, passphrase, region string) (*rsa.PrivateKey, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for key secret: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve warehouse RSA key from Secrets Manager: %w", err)
	}

	var payload []byte
	switch {
	case out.SecretString != nil:
		payload = []byte(*out.SecretString)
	case out.SecretBinary != nil:
		payload = out.SecretBinary
	default:
		return nil, fmt.Errorf("secret %s has no string or binary payload", secretID)
	}
	return parsePEMKey(payload, passphrase)
}

// parsePEMKey accepts PKCS#8 ("PRIVATE KEY") and PKCS#1 ("RSA PRIVATE
// KEY") PEM encodings, decrypting legacy-encrypted blocks when a
// passphrase is configured.
func parsePEMKey(raw []byte, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("warehouse private key is not PEM encoded")
	}

	der := block.Bytes
	//nolint:staticcheck // legacy OpenSSL-encrypted keys are still deployed
	if x509.IsEncryptedPEMBlock(block) {
		if passphrase == "" {
			return nil, fmt.Errorf("warehouse private key is encrypted but no passphrase is configured")
		}
		var err error
		//nolint:staticcheck
		der, err = x509.DecryptPEMBlock(block, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("decrypt warehouse private key: %w", err)
		}
	}

	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("warehouse private key is %T, want RSA", key)
		}
		return rsaKey, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("warehouse private key is neither PKCS#8 nor PKCS#1")
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
