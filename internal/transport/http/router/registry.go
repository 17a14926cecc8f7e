package router

import (
	"sort"
	"sync"

	"massage-booking-api/internal/transport/http/ez"
)

// APIModule 业务模块自行挂载路由
type APIModule interface{ MountAPI(ez.Routes) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 每个引擎一份，测试之间互不影响
type Registry struct {
	mu   sync.RWMutex
	mods []APIModule
}

func (r *Registry) Register(mods ...APIModule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mods = append(r.mods, mods...)
}

// MountAll 按优先级挂载所有已注册模块
func (r *Registry) MountAll(routes ez.Routes) {
	r.mu.RLock()
	mods := append([]APIModule(nil), r.mods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(routes)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
