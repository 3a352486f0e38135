package workspace

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var validMethods = []interface{}{
	"GET",
	"HEAD",
	"POST",
	"PUT",
	"PATCH",
	"DELETE",
	"OPTIONS",
	"CONNECT",
	"TRACE",
}

var validAuthTypes = []interface{}{
	AuthTypeNone,
	AuthTypeInherit,
	AuthTypeBasic,
	AuthTypeBearer,
	AuthTypeAPIKey,
}

// Validate checks an Auth value. An empty AuthType is accepted and treated
// as inherit by providers.
func (a Auth) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.AuthType, validation.In(validAuthTypes...)),
		validation.Field(&a.AddTo, validation.In("headers", "query")),
	)
}

// Validate checks a collection creation input.
func (c NewCollection) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 256)),
	); err != nil {
		return fmt.Errorf("invalid collection: %w", err)
	}
	if c.Auth != nil {
		if err := c.Auth.Validate(); err != nil {
			return fmt.Errorf("invalid collection auth: %w", err)
		}
	}
	return nil
}

// Validate checks a collection update.
func (u CollectionUpdate) Validate() error {
	if u.Name != nil {
		if err := validation.Validate(*u.Name, validation.Required, validation.Length(1, 256)); err != nil {
			return fmt.Errorf("invalid collection name: %w", err)
		}
	}
	if u.Auth != nil {
		if err := u.Auth.Validate(); err != nil {
			return fmt.Errorf("invalid collection auth: %w", err)
		}
	}
	return nil
}

// Validate checks a REST request.
func (r *RESTRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("invalid request: request is nil")
	}
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Method, validation.Required, validation.In(validMethods...)),
	); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	if err := r.Auth.Validate(); err != nil {
		return fmt.Errorf("invalid request auth: %w", err)
	}
	return nil
}

// Validate checks a collection tree before import.
func (c *RESTCollection) Validate() error {
	if c == nil {
		return fmt.Errorf("invalid collection: collection is nil")
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 256)),
	); err != nil {
		return fmt.Errorf("invalid collection %q: %w", c.Name, err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("invalid collection %q auth: %w", c.Name, err)
	}
	for _, r := range c.Requests {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("collection %q: %w", c.Name, err)
		}
	}
	for _, f := range c.Folders {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("collection %q: %w", c.Name, err)
		}
	}
	return nil
}
