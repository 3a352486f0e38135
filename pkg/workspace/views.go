package workspace

// CollectionViewItem is a collection as listed inside a view.
type CollectionViewItem struct {
	CollectionID       string `json:"collectionID"`
	ParentCollectionID string `json:"parentCollectionID,omitempty"`
	Name               string `json:"name"`
	IsLastItem         bool   `json:"isLastItem"`
}

// RequestViewItem is a request as listed inside a view.
type RequestViewItem struct {
	RequestID    string       `json:"requestID"`
	CollectionID string       `json:"collectionID"`
	Request      *RESTRequest `json:"request"`
	IsLastItem   bool         `json:"isLastItem"`
}

// Child item types.
const (
	ChildTypeCollection = "collection"
	ChildTypeRequest    = "request"
)

// ChildItem is one entry of a CollectionChildrenView. Exactly one of
// Collection and Request is set, matching Type.
type ChildItem struct {
	Type       string              `json:"type"`
	Collection *CollectionViewItem `json:"collection,omitempty"`
	Request    *RequestViewItem    `json:"request,omitempty"`
}

// RootCollectionView lists the root collections of a workspace.
type RootCollectionView struct {
	ProviderID  string               `json:"providerID"`
	WorkspaceID string               `json:"workspaceID"`
	Collections []CollectionViewItem `json:"collections"`
}

// CollectionChildrenView lists the direct children of a collection:
// child collections first, then requests.
type CollectionChildrenView struct {
	CollectionID string      `json:"collectionID"`
	Items        []ChildItem `json:"items"`
}

// InheritedAuth is the auth a collection resolves to and where it came from.
type InheritedAuth struct {
	ParentID   string `json:"parentID"`
	ParentName string `json:"parentName"`
	Auth       Auth   `json:"auth"`
}

// InheritedHeader is a header contributed by an ancestor collection.
type InheritedHeader struct {
	ParentID   string   `json:"parentID"`
	ParentName string   `json:"parentName"`
	Header     KeyValue `json:"header"`
}

// CollectionLevelAuthHeadersView is what requests inside a collection
// inherit.
type CollectionLevelAuthHeadersView struct {
	Auth    InheritedAuth     `json:"auth"`
	Headers []InheritedHeader `json:"headers"`
}

// SearchResultsView holds the filtered collection trees matching Query.
type SearchResultsView struct {
	Query   string            `json:"query"`
	Results []*RESTCollection `json:"results"`
}

// CollectionJSONView is the exported JSON of a single collection.
type CollectionJSONView struct {
	CollectionID string `json:"collectionID"`
	Content      string `json:"content"`
}
