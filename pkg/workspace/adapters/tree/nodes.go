package tree

import (
	"encoding/json"
	"strings"
	"sync/atomic"

	"github.com/jamesgeorge007/postwoman/pkg/handle"
	"github.com/jamesgeorge007/postwoman/pkg/ref"
	"github.com/jamesgeorge007/postwoman/pkg/workspace"
)

type collNode struct {
	id       string
	name     string
	auth     workspace.Auth
	headers  []workspace.KeyValue
	parent   *collNode
	folders  []*collNode
	requests []*reqNode
}

type reqNode struct {
	id     string
	parent *collNode
	req    *workspace.RESTRequest
}

// wsState is a loaded workspace plus every handle and view issued for it.
type wsState struct {
	id      string
	name    string
	version int64

	roots []*collNode
	colls map[string]*collNode
	reqs  map[string]*reqNode

	handle      workspace.WorkspaceHandle
	collHandles map[string]workspace.CollectionHandle
	reqHandles  map[string]workspace.RequestHandle

	rootView    *handle.Handle[workspace.RootCollectionView]
	childViews  map[string]*handle.Handle[workspace.CollectionChildrenView]
	authViews   map[string]*handle.Handle[workspace.CollectionLevelAuthHeadersView]
	jsonViews   map[string]*handle.Handle[workspace.CollectionJSONView]
	searchViews map[*handle.Handle[workspace.SearchResultsView]]string

	gen atomic.Int64
}

func newWSState(providerID string, snap *Snapshot) *wsState {
	ws := &wsState{
		id:          snap.WorkspaceID,
		name:        snap.Name,
		collHandles: make(map[string]workspace.CollectionHandle),
		reqHandles:  make(map[string]workspace.RequestHandle),
		childViews:  make(map[string]*handle.Handle[workspace.CollectionChildrenView]),
		authViews:   make(map[string]*handle.Handle[workspace.CollectionLevelAuthHeadersView]),
		jsonViews:   make(map[string]*handle.Handle[workspace.CollectionJSONView]),
		searchViews: make(map[*handle.Handle[workspace.SearchResultsView]]string),
	}
	ws.restore(snap)
	ws.handle = handle.New(workspace.Workspace{
		ProviderID:  providerID,
		WorkspaceID: ws.id,
		Name:        ws.name,
	})
	return ws
}

// restore replaces the tree with the snapshot contents. Handles and views
// are left untouched; sync reconciles them.
func (ws *wsState) restore(snap *Snapshot) {
	ws.version = snap.Version
	ws.roots = nil
	ws.colls = make(map[string]*collNode)
	ws.reqs = make(map[string]*reqNode)
	for _, c := range snap.Collections {
		ws.roots = append(ws.roots, ws.build(c, nil, false))
	}
}

// build converts an exported collection into nodes and indexes them. With
// freshIDs set, incoming IDs are ignored.
func (ws *wsState) build(c *workspace.RESTCollection, parent *collNode, freshIDs bool) *collNode {
	id := c.ID
	if freshIDs || id == "" || ws.colls[id] != nil {
		id = ref.NewID()
	}
	n := &collNode{
		id:      id,
		name:    c.Name,
		auth:    normalizeAuth(c.Auth),
		headers: append([]workspace.KeyValue(nil), c.Headers...),
		parent:  parent,
	}
	ws.colls[id] = n

	for _, f := range c.Folders {
		n.folders = append(n.folders, ws.build(f, n, freshIDs))
	}
	for _, r := range c.Requests {
		rn := &reqNode{parent: n, req: normalizeRequest(r)}
		rn.id = rn.req.ID
		if freshIDs || rn.id == "" || ws.reqs[rn.id] != nil {
			rn.id = ref.NewID()
		}
		rn.req.ID = rn.id
		ws.reqs[rn.id] = rn
		n.requests = append(n.requests, rn)
	}
	return n
}

func (ws *wsState) snapshot() *Snapshot {
	snap := &Snapshot{
		WorkspaceID: ws.id,
		Name:        ws.name,
		Version:     ws.version,
		Collections: make([]*workspace.RESTCollection, 0, len(ws.roots)),
	}
	for _, n := range ws.roots {
		snap.Collections = append(snap.Collections, n.export())
	}
	return snap
}

// siblings returns the slice n lives in.
func (ws *wsState) siblings(n *collNode) *[]*collNode {
	if n.parent == nil {
		return &ws.roots
	}
	return &n.parent.folders
}

// detach removes n from its sibling slice.
func (ws *wsState) detach(n *collNode) {
	s := ws.siblings(n)
	*s = removeNode(*s, n)
}

// forget drops n and everything below it from the indexes.
func (ws *wsState) forget(n *collNode) {
	delete(ws.colls, n.id)
	for _, r := range n.requests {
		delete(ws.reqs, r.id)
	}
	for _, f := range n.folders {
		ws.forget(f)
	}
}

func (ws *wsState) collectionHandle(providerID string, n *collNode) workspace.CollectionHandle {
	h, ok := ws.collHandles[n.id]
	if !ok {
		h = handle.New(n.value(providerID, ws.id))
		ws.collHandles[n.id] = h
	}
	return h
}

func (ws *wsState) requestHandle(providerID string, r *reqNode) workspace.RequestHandle {
	h, ok := ws.reqHandles[r.id]
	if !ok {
		h = handle.New(r.value(providerID, ws.id))
		ws.reqHandles[r.id] = h
	}
	return h
}

func (n *collNode) export() *workspace.RESTCollection {
	c := &workspace.RESTCollection{
		Version:  workspace.CollectionFormatVersion,
		ID:       n.id,
		Name:     n.name,
		Auth:     n.auth,
		Headers:  append([]workspace.KeyValue{}, n.headers...),
		Folders:  make([]*workspace.RESTCollection, 0, len(n.folders)),
		Requests: make([]*workspace.RESTRequest, 0, len(n.requests)),
	}
	for _, f := range n.folders {
		c.Folders = append(c.Folders, f.export())
	}
	for _, r := range n.requests {
		c.Requests = append(c.Requests, r.req.Clone())
	}
	return c
}

// isWithin reports whether n is target or below it.
func (n *collNode) isWithin(target *collNode) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == target {
			return true
		}
	}
	return false
}

func (n *collNode) parentID() string {
	if n.parent == nil {
		return ""
	}
	return n.parent.id
}

func (n *collNode) value(providerID, workspaceID string) workspace.Collection {
	return workspace.Collection{
		ProviderID:         providerID,
		WorkspaceID:        workspaceID,
		CollectionID:       n.id,
		ParentCollectionID: n.parentID(),
		Name:               n.name,
	}
}

func (r *reqNode) value(providerID, workspaceID string) workspace.Request {
	return workspace.Request{
		ProviderID:   providerID,
		WorkspaceID:  workspaceID,
		CollectionID: r.parent.id,
		RequestID:    r.id,
		Request:      r.req.Clone(),
	}
}

func removeNode(s []*collNode, n *collNode) []*collNode {
	for i, v := range s {
		if v == n {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func removeReq(s []*reqNode, r *reqNode) []*reqNode {
	for i, v := range s {
		if v == r {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func insertNode(s []*collNode, at int, n *collNode) []*collNode {
	s = append(s, nil)
	copy(s[at+1:], s[at:])
	s[at] = n
	return s
}

func insertReq(s []*reqNode, at int, r *reqNode) []*reqNode {
	s = append(s, nil)
	copy(s[at+1:], s[at:])
	s[at] = r
	return s
}

func normalizeAuth(a workspace.Auth) workspace.Auth {
	if a.AuthType == "" {
		return workspace.InheritAuth()
	}
	return a
}

func normalizeRequest(r *workspace.RESTRequest) *workspace.RESTRequest {
	c := r.Clone()
	if c.Version == 0 {
		c.Version = workspace.RequestFormatVersion
	}
	c.Auth = normalizeAuth(c.Auth)
	return c
}

// ===================================================================
// Views
// ===================================================================

func (ws *wsState) rootViewValue(providerID string) workspace.RootCollectionView {
	v := workspace.RootCollectionView{
		ProviderID:  providerID,
		WorkspaceID: ws.id,
		Collections: make([]workspace.CollectionViewItem, 0, len(ws.roots)),
	}
	for i, n := range ws.roots {
		v.Collections = append(v.Collections, workspace.CollectionViewItem{
			CollectionID: n.id,
			Name:         n.name,
			IsLastItem:   i == len(ws.roots)-1,
		})
	}
	return v
}

func childrenViewValue(n *collNode) workspace.CollectionChildrenView {
	v := workspace.CollectionChildrenView{
		CollectionID: n.id,
		Items:        make([]workspace.ChildItem, 0, len(n.folders)+len(n.requests)),
	}
	for i, f := range n.folders {
		v.Items = append(v.Items, workspace.ChildItem{
			Type: workspace.ChildTypeCollection,
			Collection: &workspace.CollectionViewItem{
				CollectionID:       f.id,
				ParentCollectionID: n.id,
				Name:               f.name,
				IsLastItem:         i == len(n.folders)-1,
			},
		})
	}
	for i, r := range n.requests {
		v.Items = append(v.Items, workspace.ChildItem{
			Type: workspace.ChildTypeRequest,
			Request: &workspace.RequestViewItem{
				RequestID:    r.id,
				CollectionID: n.id,
				Request:      r.req.Clone(),
				IsLastItem:   i == len(n.requests)-1,
			},
		})
	}
	return v
}

// authHeadersViewValue resolves what requests inside n inherit. Auth comes
// from the nearest collection (n included) whose auth is not "inherit";
// if there is none the topmost ancestor contributes "none". Headers are
// collected from the root down to n, the nearest definition of a key wins.
func authHeadersViewValue(n *collNode) workspace.CollectionLevelAuthHeadersView {
	var v workspace.CollectionLevelAuthHeadersView

	var top *collNode
	resolved := false
	for cur := n; cur != nil; cur = cur.parent {
		top = cur
		if cur.auth.AuthType != workspace.AuthTypeInherit {
			v.Auth = workspace.InheritedAuth{ParentID: cur.id, ParentName: cur.name, Auth: cur.auth}
			resolved = true
			break
		}
	}
	if !resolved {
		v.Auth = workspace.InheritedAuth{
			ParentID:   top.id,
			ParentName: top.name,
			Auth:       workspace.Auth{AuthType: workspace.AuthTypeNone, AuthActive: true},
		}
	}

	var chain []*collNode
	for cur := n; cur != nil; cur = cur.parent {
		chain = append([]*collNode{cur}, chain...)
	}
	index := make(map[string]int)
	v.Headers = []workspace.InheritedHeader{}
	for _, c := range chain {
		for _, h := range c.headers {
			ih := workspace.InheritedHeader{ParentID: c.id, ParentName: c.name, Header: h}
			if i, ok := index[strings.ToLower(h.Key)]; ok {
				v.Headers[i] = ih
				continue
			}
			index[strings.ToLower(h.Key)] = len(v.Headers)
			v.Headers = append(v.Headers, ih)
		}
	}
	return v
}

func jsonViewValue(n *collNode) workspace.CollectionJSONView {
	exported := n.export()
	exported.StripIDs()
	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		// Collections only hold strings, bools and ints.
		panic(err)
	}
	return workspace.CollectionJSONView{CollectionID: n.id, Content: string(data)}
}

// searchViewValue filters the workspace by a case-insensitive substring of
// collection and request names. A matching collection is kept whole;
// otherwise only its matching descendants are kept.
func (ws *wsState) searchViewValue(query string) workspace.SearchResultsView {
	v := workspace.SearchResultsView{Query: query, Results: []*workspace.RESTCollection{}}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return v
	}
	for _, n := range ws.roots {
		if c := filterNode(n, q); c != nil {
			v.Results = append(v.Results, c)
		}
	}
	return v
}

func filterNode(n *collNode, q string) *workspace.RESTCollection {
	if strings.Contains(strings.ToLower(n.name), q) {
		return n.export()
	}

	var folders []*workspace.RESTCollection
	for _, f := range n.folders {
		if c := filterNode(f, q); c != nil {
			folders = append(folders, c)
		}
	}
	var requests []*workspace.RESTRequest
	for _, r := range n.requests {
		if strings.Contains(strings.ToLower(r.req.Name), q) {
			requests = append(requests, r.req.Clone())
		}
	}
	if len(folders) == 0 && len(requests) == 0 {
		return nil
	}

	c := n.export()
	c.Folders = folders
	c.Requests = requests
	if c.Folders == nil {
		c.Folders = []*workspace.RESTCollection{}
	}
	if c.Requests == nil {
		c.Requests = []*workspace.RESTRequest{}
	}
	return c
}
