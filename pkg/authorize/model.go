package authorize

import (
	"fmt"

	"github.com/casbin/casbin/v2/model"
)

// defaultModel is domain RBAC with allow/deny effects. g binds a subject to
// a role inside a domain, g2 binds it globally.
const defaultModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _
g2 = _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = (g(r.sub, p.sub, r.dom) || g2(r.sub, p.sub)) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || keyMatch2(r.obj, p.obj)) && (p.act == "*" || keyMatch(r.act, p.act))
`

// LoadModel reads the model from path, or the built-in model when path is empty.
func LoadModel(path string) (model.Model, error) {
	if path == "" {
		m, err := model.NewModelFromString(defaultModel)
		if err != nil {
			return nil, fmt.Errorf("parse built-in casbin model: %w", err)
		}
		return m, nil
	}
	m, err := model.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load casbin model %q: %w", path, err)
	}
	return m, nil
}
