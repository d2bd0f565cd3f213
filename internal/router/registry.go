package router

import "github.com/gin-gonic/gin"

// Registry collects feature modules and mounts their routes under the /api
// group. Modules attach their own middleware chains (auth, rate limits), so
// nothing route-specific lives here.
type Registry struct {
	engine  *gin.Engine
	api     *gin.RouterGroup
	modules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{engine: engine, api: engine.Group("/api")}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts every added module, in registration order.
func (r *Registry) RegisterAll() {
	for _, m := range r.modules {
		m.Register(r.api)
	}
}
