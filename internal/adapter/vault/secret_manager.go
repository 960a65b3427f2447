// Package vault fetches the evaluation store and queue credentials from
// Vault's KV engine at startup, per SPEC_FULL.md §2's "Secrets | DB/queue/
// grpc credentials | hashicorp/vault/api". Grounded on the teacher's
// SecretManager, narrowed to the two secrets this repository's ambient
// stack actually needs.
package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

func (sm *SecretManager) readString(path, field string) (string, error) {
	secret, err := sm.client.Logical().Read(path)
	if err != nil {
		return "", err
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault: no secret at %s", path)
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault: malformed secret at %s", path)
	}
	val, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("vault: field %q missing at %s", field, path)
	}
	return val, nil
}

// GetDatabaseCredentials returns the Postgres connection string backing
// the evaluation store.
func (sm *SecretManager) GetDatabaseCredentials() (string, error) {
	return sm.readString("secret/data/database", "connection_string")
}

// GetQueueCredentials returns the RabbitMQ URL the batch work queue
// connects with.
func (sm *SecretManager) GetQueueCredentials() (string, error) {
	return sm.readString("secret/data/queue", "amqp_url")
}
