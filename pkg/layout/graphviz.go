package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"
	"gonum.org/v1/gonum/graph/formats/dot"
	"gonum.org/v1/gonum/graph/formats/dot/ast"

	"github.com/matzehuels/mavgraph/pkg/errors"
)

// Graphviz lays requests out with an in-process Graphviz engine.
type Graphviz struct {
	Engine string      // "dot" when empty
	Logger *log.Logger // optional
}

// NewGraphviz returns a dot-engine layouter.
func NewGraphviz() *Graphviz {
	return &Graphviz{Engine: "dot"}
}

// Layout runs the engine and reads node boxes and edge routes back.
func (g *Graphviz) Layout(ctx context.Context, req *Request) (*Result, error) {
	src := ToDOT(req)
	out, err := g.render(ctx, src, graphviz.XDOT)
	if err != nil {
		return nil, err
	}
	res, err := parseLaidOut(out, req)
	if err != nil {
		return nil, err
	}
	if g.Logger != nil {
		g.Logger.Debug("layout", "engine", g.engine(), "nodes", len(res.Nodes), "edges", len(res.Edges))
	}
	return res, nil
}

// RenderSVG lays the request out and returns it drawn as SVG.
func (g *Graphviz) RenderSVG(ctx context.Context, req *Request) ([]byte, error) {
	out, err := g.render(ctx, ToDOT(req), graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

func (g *Graphviz) engine() string {
	if g.Engine == "" {
		return "dot"
	}
	return g.Engine
}

func (g *Graphviz) render(ctx context.Context, src string, format graphviz.Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(g.engine()))

	graph, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse DOT")
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Reading laid-out DOT
// =============================================================================

type rawBox struct{ llx, lly, urx, ury float64 }

type reader struct {
	clusters map[string]bool
	bb       rawBox
	haveBB   bool
	boxes    map[string]rawBox
	routes   map[string]Route
}

// parseLaidOut extracts positions from DOT produced by Graphviz and
// converts them to top-left origin layout units.
func parseLaidOut(out []byte, req *Request) (*Result, error) {
	f, err := dot.ParseBytes(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "read layout")
	}
	if len(f.Graphs) == 0 {
		return nil, errors.New(errors.ErrCodeLayoutFailed, "layout output has no graph")
	}
	r := &reader{
		clusters: req.Clusters(),
		boxes:    make(map[string]rawBox),
		routes:   make(map[string]Route),
	}
	if err := r.stmts(f.Graphs[0].Stmts, ""); err != nil {
		return nil, err
	}
	if !r.haveBB {
		return nil, errors.New(errors.ErrCodeLayoutFailed, "layout output has no bounding box")
	}

	top := r.bb.ury
	res := &Result{Width: r.bb.urx - r.bb.llx, Height: r.bb.ury - r.bb.lly}
	for _, n := range req.Nodes {
		b, ok := r.boxes[n.ID]
		if !ok {
			return nil, errors.New(errors.ErrCodeLayoutFailed, "node %s was not placed", n.ID)
		}
		res.Nodes = append(res.Nodes, Box{
			ID:      n.ID,
			X:       b.llx - r.bb.llx,
			Y:       top - b.ury,
			Width:   b.urx - b.llx,
			Height:  b.ury - b.lly,
			Cluster: n.Cluster,
		})
	}
	for _, e := range req.Edges {
		rt, ok := r.routes[e.ID]
		if !ok {
			continue
		}
		rt.Dummy = e.Dummy
		for i, p := range rt.Points {
			rt.Points[i] = Point{X: p.X - r.bb.llx, Y: top - p.Y}
		}
		if rt.End != nil {
			rt.End = &Point{X: rt.End.X - r.bb.llx, Y: top - rt.End.Y}
		}
		res.Edges = append(res.Edges, rt)
	}
	return res, nil
}

func (r *reader) stmts(stmts []ast.Stmt, cluster string) error {
	for _, s := range stmts {
		var err error
		switch s := s.(type) {
		case *ast.AttrStmt:
			if s.Kind == ast.GraphKind {
				err = r.graphAttrs(s.Attrs, cluster)
			}
		case *ast.Attr:
			err = r.graphAttrs([]*ast.Attr{s}, cluster)
		case *ast.Subgraph:
			id := unquote(s.ID)
			sub := ""
			if strings.HasPrefix(id, clusterPrefix) {
				sub = strings.TrimPrefix(id, clusterPrefix)
			}
			if sub == "" {
				sub = cluster
			}
			err = r.stmts(s.Stmts, sub)
		case *ast.NodeStmt:
			err = r.node(unquote(s.Node.ID), s.Attrs)
		case *ast.EdgeStmt:
			err = r.edge(s.Attrs)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) graphAttrs(attrs []*ast.Attr, cluster string) error {
	for _, a := range attrs {
		if a.Key != "bb" {
			continue
		}
		b, err := parseBB(unquote(a.Val))
		if err != nil {
			return err
		}
		if cluster == "" {
			r.bb, r.haveBB = b, true
		} else {
			r.boxes[cluster] = b
		}
	}
	return nil
}

func (r *reader) node(id string, attrs []*ast.Attr) error {
	if r.clusters[id] {
		return nil
	}
	var (
		pos  Point
		w, h float64
		seen bool
		err  error
	)
	for _, a := range attrs {
		v := unquote(a.Val)
		switch a.Key {
		case "pos":
			pos, err = parsePoint(v)
			seen = true
		case "width":
			w, err = strconv.ParseFloat(v, 64)
			w *= 72
		case "height":
			h, err = strconv.ParseFloat(v, 64)
			h *= 72
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeLayoutFailed, err, "node %s: bad %s", id, a.Key)
		}
	}
	if seen {
		r.boxes[id] = rawBox{llx: pos.X - w/2, lly: pos.Y - h/2, urx: pos.X + w/2, ury: pos.Y + h/2}
	}
	return nil
}

func (r *reader) edge(attrs []*ast.Attr) error {
	var (
		rt  Route
		pos string
	)
	for _, a := range attrs {
		switch a.Key {
		case "id":
			rt.ID = unquote(a.Val)
		case "pos":
			pos = unquote(a.Val)
		}
	}
	if rt.ID == "" || pos == "" {
		return nil
	}
	for _, tok := range strings.Fields(pos) {
		tip := strings.HasPrefix(tok, "e,") || strings.HasPrefix(tok, "s,")
		if tip {
			tok = tok[2:]
		}
		p, err := parsePoint(tok)
		if err != nil {
			return errors.Wrap(errors.ErrCodeLayoutFailed, err, "edge %s: bad route", rt.ID)
		}
		if tip {
			rt.End = &p
			continue
		}
		rt.Points = append(rt.Points, p)
	}
	r.routes[rt.ID] = rt
	return nil
}

func parsePoint(s string) (Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("point %q", s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return Point{}, err
	}
	// A trailing ",z" appears in 3D layouts.
	ys, _, _ = strings.Cut(ys, ",")
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

func parseBB(s string) (rawBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return rawBox{}, errors.New(errors.ErrCodeLayoutFailed, "bad bounding box %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return rawBox{}, errors.Wrap(errors.ErrCodeLayoutFailed, err, "bad bounding box %q", s)
		}
		v[i] = f
	}
	return rawBox{llx: v[0], lly: v[1], urx: v[2], ury: v[3]}, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// matching width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
