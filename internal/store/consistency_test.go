package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"population-pipeline/internal/config"
	"population-pipeline/internal/model"
	"population-pipeline/internal/pipeline"
)

// Every snapshot must either produce the same total on all three paths or
// fail on all of them.
func TestAggregationPathsAgreeOnEdgeSnapshots(t *testing.T) {
	cases := []struct {
		name string
		data string
		want int64
		fail bool
	}{
		{
			name: "quoted years and populations",
			data: `[{"ID Year":"2018","Population":100},{"ID Year":"2019","Population":"200"}]`,
			want: 300,
		},
		{
			name: "whitespace padded values",
			data: `[{"ID Year":"2018\n","Population":100},{"ID Year":" 2019 ","Population":"200\t"},{"ID Year":"\r2020","Population":"\f5\u000b"}]`,
			want: 305,
		},
		{
			name: "null and missing years are skipped",
			data: `[{"ID Year":null,"Population":50},{"Population":70},{"ID Year":2018,"Population":100}]`,
			want: 100,
		},
		{
			name: "fractional population outside target years",
			data: `[{"ID Year":2017,"Population":1.5},{"ID Year":2020,"Population":10}]`,
			want: 10,
		},
		{
			name: "malformed population outside target years",
			data: `[{"ID Year":2021,"Population":"lots"},{"ID Year":2018,"Population":100}]`,
			want: 100,
		},
		{
			name: "fractional population in target year",
			data: `[{"ID Year":2018,"Population":100.5}]`,
			fail: true,
		},
		{
			name: "fractional year",
			data: `[{"ID Year":2018.0,"Population":100}]`,
			fail: true,
		},
		{
			name: "malformed year outside target years",
			data: `[{"ID Year":"abc","Population":1},{"ID Year":2018,"Population":100}]`,
			fail: true,
		},
		{
			name: "malformed population in target year",
			data: `[{"ID Year":2019,"Population":"lots"}]`,
			fail: true,
		},
		{
			name: "boolean population in target year",
			data: `[{"ID Year":2019,"Population":true}]`,
			fail: true,
		},
		{
			name: "non-ascii padding",
			data: `[{"ID Year":"\u00a02018","Population":100}]`,
			fail: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := openTestStore(t, config.SavePolicyAppend)
			doc := parseDoc(t, tc.data)
			require.NoError(t, s.Save(ctx, doc))

			mem, memErr := pipeline.SumInMemory(doc)
			inline, inlineErr := s.QueryInlineSum(ctx)
			view, viewErr := s.QueryViewSum(ctx)

			if tc.fail {
				require.ErrorIs(t, memErr, model.ErrShape)
				require.ErrorIs(t, inlineErr, model.ErrQuery)
				require.ErrorIs(t, viewErr, model.ErrQuery)
				return
			}
			require.NoError(t, memErr)
			require.NoError(t, inlineErr)
			require.NoError(t, viewErr)
			require.Equal(t, tc.want, mem)
			require.Equal(t, tc.want, inline)
			require.Equal(t, tc.want, view)
		})
	}
}
