// Package less compiles the LESS dialect used by the vgui.css theme sources
// into flat CSS.
//
// The supported surface covers what the themes rely on: variables with lazy
// block scoping, nested rules with & parent references, class and parametric
// mixins, arithmetic and the common colour functions, @import with lessc's
// import options, and bubbling of nested @media blocks. Output follows
// lessc's default layout so compiled themes diff cleanly against it.
//
// Constructs outside that surface (guards, :extend, detached rulesets,
// plugins) are rejected with a SyntaxError rather than passed through.
package less
