package parser

// Context is the mutable state of one parse that the grammar shares across
// constructs. Sub-parsers for string interpolation share their parent's Context.
type Context struct {
	angleDepth     int
	oxfordComma    bool
	defaultPrivate bool
}

func NewContext() *Context {
	return &Context{}
}

// OpenAngle records entry into a keyword-introduced generic argument list.
func (c *Context) OpenAngle() {
	c.angleDepth++
}

// CloseAngle records the matching '>'. It reports false when no list is open.
func (c *Context) CloseAngle() bool {
	if c.angleDepth == 0 {
		return false
	}
	c.angleDepth--
	return true
}

func (c *Context) AngleDepth() int {
	return c.angleDepth
}

// ResetAngles clears the counter and returns the depth it had.
func (c *Context) ResetAngles() int {
	d := c.angleDepth
	c.angleDepth = 0
	return d
}

// RestoreAngles sets the counter back to base, the depth a nested construct started
// at, and returns how far it had drifted from it.
func (c *Context) RestoreAngles(base int) int {
	d := c.angleDepth - base
	c.angleDepth = base
	return d
}

// OxfordComma reports whether list grammars accept a trailing separator.
func (c *Context) OxfordComma() bool {
	return c.oxfordComma
}

func (c *Context) SetOxfordComma(on bool) {
	c.oxfordComma = on
}

func (c *Context) DefaultPrivate() bool {
	return c.defaultPrivate
}

func (c *Context) SetDefaultPrivate(on bool) {
	c.defaultPrivate = on
}
