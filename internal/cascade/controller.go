package cascade

import (
	"context"
	"fmt"
)

// Option is one selectable unit at a level.
type Option struct {
	ID   uint
	Name string
}

// Source lists the children of parentID at level. For Province the parent is ignored.
// An unknown parent yields an empty list.
type Source interface {
	Children(ctx context.Context, level Level, parentID uint) ([]Option, error)
}

// NotAnOptionError reports an id that is not a child of the current selection.
type NotAnOptionError struct {
	Level Level
	ID    uint
}

func (e *NotAnOptionError) Error() string {
	return fmt.Sprintf("%s %d is not valid for the selected parent", e.Level, e.ID)
}

// Controller keeps a Selection consistent with the options offered at each
// level. Not safe for concurrent use; create one per form or verification.
type Controller struct {
	src     Source
	sel     Selection
	options [4][]Option
}

// NewController loads the province options.
func NewController(ctx context.Context, src Source) (*Controller, error) {
	c := &Controller{src: src}
	opts, err := src.Children(ctx, Province, 0)
	if err != nil {
		return nil, err
	}
	c.options[Province] = opts
	return c, nil
}

// Select verifies id against the current options of level, loads the options
// of the next level, then stores id and drops deeper selections and options.
// A failed load leaves the controller unchanged.
func (c *Controller) Select(ctx context.Context, level Level, id uint) error {
	if !level.Valid() {
		return fmt.Errorf("unknown level %d", int(level))
	}
	if !contains(c.options[level], id) {
		return &NotAnOptionError{Level: level, ID: id}
	}

	var next []Option
	if level < Village {
		opts, err := c.src.Children(ctx, level+1, id)
		if err != nil {
			return err
		}
		next = opts
	}

	c.sel.Select(level, id)
	for l := level + 1; l <= Village; l++ {
		c.options[l] = nil
	}
	if level < Village {
		c.options[level+1] = next
	}
	return nil
}

// Clear unsets level and everything below it; options below level are dropped.
func (c *Controller) Clear(level Level) {
	if !level.Valid() {
		return
	}
	c.sel.Clear(level)
	for l := level + 1; l <= Village; l++ {
		c.options[l] = nil
	}
}

func (c *Controller) Options(level Level) []Option {
	if !level.Valid() {
		return nil
	}
	return c.options[level]
}

func (c *Controller) Selection() Selection {
	return c.sel
}

func contains(opts []Option, id uint) bool {
	if id == 0 {
		return false
	}
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
