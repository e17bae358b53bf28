package leave

// Catalog resolves leave types and their alias groups. Types in one alias
// group share a single yearly pool: the allotment of the group's anchor type.
type Catalog struct {
	types map[string]LeaveType
	order []string
}

// NewCatalog builds a catalog from reference rows. Every AliasGroupID must
// name an existing type that is itself an anchor; chained aliases are
// rejected so group resolution is always a single hop.
func NewCatalog(types []LeaveType) (*Catalog, error) {
	c := &Catalog{types: make(map[string]LeaveType, len(types))}
	for _, t := range types {
		if _, dup := c.types[t.ID]; dup {
			return nil, &ValidationError{Field: "leaveTypeId", Reason: "duplicate leave type " + t.ID}
		}
		c.types[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	for _, t := range types {
		if t.AliasGroupID == nil {
			continue
		}
		anchor, ok := c.types[*t.AliasGroupID]
		if !ok {
			return nil, &ValidationError{Field: "aliasGroupId", Reason: "unknown anchor type " + *t.AliasGroupID}
		}
		if anchor.AliasGroupID != nil {
			return nil, &ValidationError{Field: "aliasGroupId", Reason: "anchor " + anchor.ID + " is itself aliased"}
		}
	}
	return c, nil
}

func (c *Catalog) ByID(id string) (LeaveType, bool) {
	t, ok := c.types[id]
	return t, ok
}

// AnchorID resolves a type to the anchor of its alias group. An anchor type
// resolves to itself.
func (c *Catalog) AnchorID(id string) (string, bool) {
	t, ok := c.types[id]
	if !ok {
		return "", false
	}
	if t.AliasGroupID != nil {
		return *t.AliasGroupID, true
	}
	return t.ID, true
}

// IsAnchor reports whether the type owns its pool rather than drawing from
// another type's.
func (c *Catalog) IsAnchor(id string) bool {
	t, ok := c.types[id]
	return ok && t.AliasGroupID == nil
}

// GroupMembers returns every type id that draws from the given anchor's
// pool, the anchor included, in catalog order.
func (c *Catalog) GroupMembers(anchorID string) []string {
	var members []string
	for _, id := range c.order {
		if resolved, ok := c.AnchorID(id); ok && resolved == anchorID {
			members = append(members, id)
		}
	}
	return members
}

// All returns the catalog in insertion order.
func (c *Catalog) All() []LeaveType {
	out := make([]LeaveType, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.types[id])
	}
	return out
}
