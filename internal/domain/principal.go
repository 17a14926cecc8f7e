package domain

// Principal 已通过 JWT 校验的调用方
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole 空集合表示任意已登录用户
func (p Principal) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool { return p.HasRole(RoleAdmin) }

// CanAccess 行级归属：本人或 Admin
func (p Principal) CanAccess(ownerID string) bool {
	return p.UserID != "" && (p.UserID == ownerID || p.IsAdmin())
}
