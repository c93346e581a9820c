package rusmt

// Frame is one level of the assertion-set stack: a symbol table paired with
// the clauses asserted while that frame was on top.
type Frame struct {
	Symbols *SymbolTable
	Clauses *ClauseDatabase
}

// NewFrame returns an empty frame.
func NewFrame() *Frame {
	return &Frame{Symbols: NewSymbolTable(), Clauses: NewClauseDatabase()}
}

// FrameStack is the ordered stack of assertion frames a script builds up via
// push/pop. The bottom frame is never popped.
type FrameStack struct {
	frames []*Frame
}

// NewFrameStack returns a stack with a single base frame.
func NewFrameStack() *FrameStack {
	return &FrameStack{frames: []*Frame{NewFrame()}}
}

// Top returns the frame currently on top of the stack.
func (fs *FrameStack) Top() *Frame {
	return fs.frames[len(fs.frames)-1]
}

// Push appends n fresh empty frames.
func (fs *FrameStack) Push(n int) {
	for i := 0; i < n; i++ {
		fs.frames = append(fs.frames, NewFrame())
	}
}

// Pop removes the top n frames. It fails with ErrPopUnderflow if that would
// remove the base frame.
func (fs *FrameStack) Pop(n int) error {
	if n >= len(fs.frames) {
		return ErrPopUnderflow
	}
	fs.frames = fs.frames[:len(fs.frames)-n]
	return nil
}

// ResolveID walks the frame stack from top to bottom looking for name,
// mirroring the Rust source's get_symbol_id lookup order.
func (fs *FrameStack) ResolveID(name string) (uint32, bool) {
	for i := len(fs.frames) - 1; i >= 0; i-- {
		if id, ok := fs.frames[i].Symbols.GetID(name); ok {
			return id, true
		}
	}
	return 0, false
}

// Flatten concatenates every frame's clauses, bottom to top, into a single
// database — what a check-sat call hands to the preprocessor/engine.
func (fs *FrameStack) Flatten() *ClauseDatabase {
	out := NewClauseDatabase()
	for _, f := range fs.frames {
		for _, c := range f.Clauses.Iter() {
			out.Append(c)
		}
	}
	return out
}

// ResolveName looks up the name bound to id across every frame. An id
// appears in at most one frame's symbol table, so the search order doesn't
// affect the result.
func (fs *FrameStack) ResolveName(id uint32) (string, bool) {
	for i := len(fs.frames) - 1; i >= 0; i-- {
		if name, ok := fs.frames[i].Symbols.GetName(id); ok {
			return name, true
		}
	}
	return "", false
}
