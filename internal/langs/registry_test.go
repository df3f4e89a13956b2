package langs

import (
	"context"
	"testing"

	"codescope/internal/astcore"
)

func TestRegistryDispatchesByExtension(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	cases := []struct {
		ext  string
		want astcore.Language
	}{
		{".go", astcore.LangGo},
		{".py", astcore.LangPython},
		{".rs", astcore.LangRust},
		{".ts", astcore.LangTypeScript},
		{".tsx", astcore.LangTypeScript},
		{".js", astcore.LangJavaScript},
		{".c", astcore.LangC},
		{".cpp", astcore.LangCPP},
		{".kt", astcore.LangKotlin},
		{".exe", astcore.LangUnknown},
	}

	for _, c := range cases {
		if got := r.LanguageForExt(c.ext); got != c.want {
			t.Errorf("LanguageForExt(%q) = %v, want %v", c.ext, got, c.want)
		}
	}
}

func TestGoParserBuildsModuleWithFunction(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	src := []byte(`package sample

import "fmt"

func Greet(name string) string {
	if name == "" {
		return "hello"
	}
	return fmt.Sprintf("hello %s", name)
}
`)

	store := astcore.NewStore()
	p := r.For(astcore.LangGo)
	if p == nil {
		t.Fatal("expected Go parser to be registered")
	}

	file := astcore.FileId{Path: "sample.go", Fingerprint: astcore.FingerprintBytes(src)}
	rootID, parseErr, err := p.Parse(context.Background(), store, file, src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if parseErr != nil {
		t.Fatalf("Parse reported a syntax error on valid input: %v", parseErr)
	}

	root, ok := store.Get(rootID)
	if !ok {
		t.Fatal("root node not found in store")
	}
	if root.Kind != astcore.KindModule {
		t.Fatalf("expected root kind Module, got %v", root.Kind)
	}

	var found bool
	for _, n := range store.All() {
		if n.Kind == astcore.KindFunction && n.Payload.Name == "Greet" {
			found = true
			if !n.Flags.Has(astcore.FlagIsExported) {
				t.Error("expected Greet to be flagged exported")
			}
		}
	}
	if !found {
		t.Fatal("expected to find Greet function node")
	}
}

func TestPythonParserRecoversFromSyntaxError(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	src := []byte("def broken(:\n    pass\n")

	store := astcore.NewStore()
	p := r.For(astcore.LangPython)
	file := astcore.FileId{Path: "broken.py", Fingerprint: astcore.FingerprintBytes(src)}

	rootID, parseErr, err := p.Parse(context.Background(), store, file, src)
	if err != nil {
		t.Fatalf("Parse returned a hard error: %v", err)
	}
	if parseErr == nil {
		t.Fatal("expected a recovered parse error for malformed input")
	}
	if rootID == astcore.Unresolved {
		t.Fatal("expected a partial AST even with a syntax error")
	}
}

func TestIdenticalGoSourcesHashConsToSameNodes(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	src := []byte(`package sample

func Add(a, b int) int {
	return a + b
}
`)

	store := astcore.NewStore()
	p := r.For(astcore.LangGo)
	ctx := context.Background()

	f1 := astcore.FileId{Path: "a.go", Fingerprint: astcore.FingerprintBytes(src)}
	f2 := astcore.FileId{Path: "b.go", Fingerprint: astcore.FingerprintBytes(src)}

	root1, _, err := p.Parse(ctx, store, f1, src)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	before := store.Len()

	root2, _, err := p.Parse(ctx, store, f2, src)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	if root1 == root2 {
		t.Fatal("two distinct files should not share a Module node even with identical bodies")
	}
	// Every non-Module descendant (function signature, identifiers, literals,
	// block structure) is byte-identical, so hash-consing should add exactly
	// one new node: the second file's own Module node.
	if got, want := store.Len(), before+1; got != want {
		t.Fatalf("expected hash-consing to add exactly 1 node for the duplicate body, store grew to %d (from %d)", got, before)
	}
}
