package check

import (
	"bytes"
	"testing"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "clean",
			raw:  "2 4 3 0\n",
			want: "✓ 2 route groups, 4 operations, 3 types\n✓ All types resolvable\n",
		},
		{
			name: "with warnings",
			raw:  "1 1 2 2\n",
			want: "✓ 1 route groups, 1 operations, 2 types\n! 2 warnings\n✓ All types resolvable\n",
		},
		{
			name:    "garbage",
			raw:     "generated client\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := report(&buf, []byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("report() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && buf.String() != tt.want {
				t.Errorf("report() wrote %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
