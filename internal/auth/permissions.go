package auth

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Permissions maps an upper-cased realm role to the permissions it grants
type Permissions map[string][]string

type permissionsFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPermissions reads permissions.yml. Role keys are upper-cased and every
// permission must have the "resource:action" form.
func LoadPermissions(path string) (Permissions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions file: %w", err)
	}
	var pf permissionsFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse permissions file: %w", err)
	}

	perms := make(Permissions, len(pf.Roles))
	for role, granted := range pf.Roles {
		key := strings.ToUpper(strings.TrimSpace(role))
		list := perms[key]
		if list == nil {
			list = []string{}
		}
		for _, p := range granted {
			resource, action, ok := strings.Cut(p, ":")
			if !ok || resource == "" || action == "" {
				return nil, fmt.Errorf("role %s: malformed permission %q", key, p)
			}
			if !contains(list, p) {
				list = append(list, p)
			}
		}
		perms[key] = list
	}
	return perms, nil
}

// Allows reports whether role grants permission; role matching ignores case
func (p Permissions) Allows(role, permission string) bool {
	return contains(p[strings.ToUpper(role)], permission)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
