// FILE: lixenwraith/yamlsettings/comments.go
package settings

// CommentRegistry maps dotted paths to comment lines.
// Leaf comments belong to a single property path; section comments belong to a
// path prefix and are written under that prefix's header line. Lookups are by
// exact path only: a section comment for "server" is not repeated for "server.tls".
type CommentRegistry struct {
	leaf    map[string][]string
	section map[string][]string
}

// NewCommentRegistry creates an empty registry.
func NewCommentRegistry() *CommentRegistry {
	return &CommentRegistry{
		leaf:    make(map[string][]string),
		section: make(map[string][]string),
	}
}

// AddLeaf appends comment lines for a property path.
func (r *CommentRegistry) AddLeaf(path string, comments ...string) {
	if len(comments) == 0 {
		return
	}
	r.leaf[path] = append(r.leaf[path], comments...)
}

// SetSection replaces the comment lines for a section prefix.
// The empty prefix holds the file header.
func (r *CommentRegistry) SetSection(prefix string, comments ...string) {
	if len(comments) == 0 {
		delete(r.section, prefix)
		return
	}
	r.section[prefix] = append([]string(nil), comments...)
}

// Leaf returns the comments registered for a property path.
func (r *CommentRegistry) Leaf(path string) []string {
	if r == nil {
		return nil
	}
	return r.leaf[path]
}

// Section returns the comments registered for a section prefix.
func (r *CommentRegistry) Section(prefix string) []string {
	if r == nil {
		return nil
	}
	return r.section[prefix]
}
