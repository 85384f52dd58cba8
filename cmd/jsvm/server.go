package main

import (
	"net/http"

	"github.com/emicklei/dot"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coreform/jsvm/core/realm"
	"github.com/coreform/jsvm/core/shape"
)

// newDebugServer builds the operational HTTP surface a host embeds
// alongside a running Context: Prometheus metrics off the heap's own
// registry, and a Graphviz rendering of one object's shape ancestor
// chain for inspecting hidden-class sharing.
func newDebugServer(ctx *realm.Context) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(ctx.Heap.Registry(), promhttp.HandlerOpts{}))
	r.Get("/debug/shapes", func(w http.ResponseWriter, req *http.Request) {
		global := ctx.Realm.Global
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(renderShapeChain(global.Shape())))
	})
	return r
}

// renderShapeChain walks s up through Parent() to the root and renders
// the chain as a Graphviz digraph, one node per shape with its own
// property keys labeled.
func renderShapeChain(s *shape.Shape) string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "BT")

	var chain []*shape.Shape
	for cur := s; cur != nil; cur = cur.Parent() {
		chain = append(chain, cur)
	}

	nodes := make([]dot.Node, len(chain))
	for i, sh := range chain {
		label := "root"
		if keys := sh.OwnKeys(); len(keys) > 0 {
			label = keys[len(keys)-1].String()
		}
		nodes[i] = g.Node(label).Attr("shape", "box")
	}
	for i := 0; i < len(nodes)-1; i++ {
		g.Edge(nodes[i], nodes[i+1])
	}
	return g.String()
}
