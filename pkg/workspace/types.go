package workspace

// Workspace is the value behind a workspace handle.
type Workspace struct {
	ProviderID  string `json:"providerID"`
	WorkspaceID string `json:"workspaceID"`
	Name        string `json:"name"`
}

// Collection is the value behind a collection handle.
type Collection struct {
	ProviderID         string `json:"providerID"`
	WorkspaceID        string `json:"workspaceID"`
	CollectionID       string `json:"collectionID"`
	ParentCollectionID string `json:"parentCollectionID,omitempty"` // empty for root collections
	Name               string `json:"name"`
}

// Request is the value behind a request handle.
type Request struct {
	ProviderID   string       `json:"providerID"`
	WorkspaceID  string       `json:"workspaceID"`
	CollectionID string       `json:"collectionID"` // owning collection
	RequestID    string       `json:"requestID"`
	Request      *RESTRequest `json:"request"`
}

// Decor describes a provider to whatever presents the provider list.
type Decor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Priority orders providers, lowest first.
	Priority int `json:"priority"`
}

// Auth types.
const (
	AuthTypeNone    = "none"
	AuthTypeInherit = "inherit"
	AuthTypeBasic   = "basic"
	AuthTypeBearer  = "bearer"
	AuthTypeAPIKey  = "api-key"
)

// KeyValue is a header, query parameter or form field.
type KeyValue struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Active bool   `json:"active" yaml:"active"`
}

// Auth is request or collection level authorization.
type Auth struct {
	AuthType   string `json:"authType" yaml:"authType"`
	AuthActive bool   `json:"authActive" yaml:"authActive"`

	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`

	// API key auth
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	AddTo string `json:"addTo,omitempty" yaml:"addTo,omitempty"` // "headers" or "query"
}

// InheritAuth is the default auth for new collections and requests.
func InheritAuth() Auth {
	return Auth{AuthType: AuthTypeInherit, AuthActive: true}
}

// Body is a request body.
type Body struct {
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Body        string `json:"body,omitempty" yaml:"body,omitempty"`
}

// RESTRequest is a stored REST request.
type RESTRequest struct {
	Version          int        `json:"v" yaml:"v"`
	ID               string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name             string     `json:"name" yaml:"name"`
	Method           string     `json:"method" yaml:"method"`
	Endpoint         string     `json:"endpoint" yaml:"endpoint"`
	Params           []KeyValue `json:"params" yaml:"params"`
	Headers          []KeyValue `json:"headers" yaml:"headers"`
	PreRequestScript string     `json:"preRequestScript" yaml:"preRequestScript"`
	TestScript       string     `json:"testScript" yaml:"testScript"`
	Auth             Auth       `json:"auth" yaml:"auth"`
	Body             Body       `json:"body" yaml:"body"`
}

// Clone returns a deep copy.
func (r *RESTRequest) Clone() *RESTRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.Params = append([]KeyValue(nil), r.Params...)
	c.Headers = append([]KeyValue(nil), r.Headers...)
	return &c
}

// RESTCollection is a collection tree in its import/export form.
type RESTCollection struct {
	Version  int               `json:"v" yaml:"v"`
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string            `json:"name" yaml:"name"`
	Folders  []*RESTCollection `json:"folders" yaml:"folders"`
	Requests []*RESTRequest    `json:"requests" yaml:"requests"`
	Auth     Auth              `json:"auth" yaml:"auth"`
	Headers  []KeyValue        `json:"headers" yaml:"headers"`
}

// Clone returns a deep copy.
func (c *RESTCollection) Clone() *RESTCollection {
	if c == nil {
		return nil
	}
	out := *c
	out.Headers = append([]KeyValue(nil), c.Headers...)
	out.Folders = make([]*RESTCollection, len(c.Folders))
	for i, f := range c.Folders {
		out.Folders[i] = f.Clone()
	}
	out.Requests = make([]*RESTRequest, len(c.Requests))
	for i, r := range c.Requests {
		out.Requests[i] = r.Clone()
	}
	return &out
}

// StripIDs clears internal identifiers on the whole tree.
func (c *RESTCollection) StripIDs() {
	c.ID = ""
	for _, r := range c.Requests {
		r.ID = ""
	}
	for _, f := range c.Folders {
		f.StripIDs()
	}
}

// CollectionFormatVersion is the current RESTCollection format version.
const CollectionFormatVersion = 2

// RequestFormatVersion is the current RESTRequest format version.
const RequestFormatVersion = 3

// NewCollection is the input for creating a collection.
type NewCollection struct {
	Name    string
	Auth    *Auth // nil means inherit
	Headers []KeyValue
}

// CollectionUpdate changes a collection. Nil fields are left alone.
type CollectionUpdate struct {
	Name    *string
	Auth    *Auth
	Headers []KeyValue
}
