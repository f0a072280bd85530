package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// LoadAddressBook reads a JSON object mapping administrator names to notification addresses
func LoadAddressBook(path string) (entities.AddressBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read address book %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse address book %s: %w", path, err)
	}

	book := make(entities.AddressBook, len(raw))
	for name, address := range raw {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("address book %s: empty administrator name", path)
		}
		book[entities.AdministratorName(name)] = strings.TrimSpace(address)
	}
	return book, nil
}
