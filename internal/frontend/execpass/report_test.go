package execpass

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"unitc/internal/failure"
)

func TestParseOutputGroovyStartupFailure(t *testing.T) {
	out := `org.codehaus.groovy.control.MultipleCompilationErrorsException: startup failed:
/src/A.groovy: 3: Unexpected input: '}' @ line 3, column 1.
   }
   ^

General error during class generation: boom
	at org.codehaus.groovy.Foo.bar(Foo.java:10)

2 errors
`
	r := parseOutput([]byte(out))
	want := []*failure.Failure{
		failure.Syntax("Unexpected input: '}' @ line 3, column 1.", "/src/A.groovy", 3, 1),
		failure.Plain("General error during class generation: boom"),
	}
	if diff := cmp.Diff(want, r.causes); diff != "" {
		t.Fatalf("causes (-want +got):\n%s", diff)
	}
	if len(r.warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.warnings)
	}
}

func TestParseOutputJavacStyle(t *testing.T) {
	out := "warning: [options] bootstrap class path not set\r\n" +
		"/src/C.java:12: error: cannot find symbol\n" +
		"  symbol:   class Missing\n" +
		"/src/D.java:4: warning: [deprecation] old() is deprecated\n" +
		"1 error\n"
	r := parseOutput([]byte(out))

	wantCauses := []*failure.Failure{
		failure.Runtime("cannot find symbol", "/src/C.java", &failure.Node{Line: 12, Column: -1}),
	}
	if diff := cmp.Diff(wantCauses, r.causes); diff != "" {
		t.Fatalf("causes (-want +got):\n%s", diff)
	}
	wantWarnings := []string{"[options] bootstrap class path not set", "[deprecation] old() is deprecated"}
	if diff := cmp.Diff(wantWarnings, r.warnings); diff != "" {
		t.Fatalf("warnings (-want +got):\n%s", diff)
	}
}

func TestParseOutputIgnoresChatterOutsideFailureBlock(t *testing.T) {
	r := parseOutput([]byte("Compiling 3 files\nWARNING: An illegal reflective access operation has occurred\ndone\n"))
	if len(r.causes) != 0 {
		t.Fatalf("unexpected causes: %v", r.causes)
	}
	if diff := cmp.Diff([]string{"An illegal reflective access operation has occurred"}, r.warnings); diff != "" {
		t.Fatalf("warnings (-want +got):\n%s", diff)
	}
}
