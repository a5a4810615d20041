package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "paragraphs become lines",
			raw:  "<p>303회 2026.02.19</p><p>1등 4조 6 3 9 5 6 6 1</p>",
			want: "303회 2026.02.19\n1등 4조 6 3 9 5 6 6 1",
		},
		{
			name: "script and style contents are dropped",
			raw:  "<div>a<script>var x = '<p>1등</p>';</script><style>p { color: red }</style>b</div>",
			want: "ab",
		},
		{
			name: "line break tags",
			raw:  "a<br>b<br/>c",
			want: "a\nb\nc",
		},
		{
			name: "table rows and list items end lines",
			raw:  "<table><tr><td>1</td><td>2</td></tr><tr><td>3</td></tr></table><ul><li>x</li><li>y</li></ul>",
			want: "1 2\n3\nx\ny",
		},
		{
			name: "inline tags become spaces",
			raw:  "<span>1</span><span>2</span>",
			want: "1 2",
		},
		{
			name: "fixed entities are decoded",
			raw:  "A&nbsp;B &amp; C &lt;D&gt; &#39;E&#39; &quot;F&quot;",
			want: `A B & C <D> 'E' "F"`,
		},
		{
			name: "footnote markers are removed",
			raw:  "1등[1] 4조 [ 12 ]6 3[/1]",
			want: "1등 4조 6 3",
		},
		{
			name: "blank line runs fold to one",
			raw:  "<p>a</p><p></p><p></p><p>b</p>",
			want: "a\n\nb",
		},
		{
			name: "carriage returns and wide whitespace",
			raw:  "  a \t  b\r\n\r\n\r\n c  ",
			want: "a b\n\nc",
		},
		{
			name: "no markup at all",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeText(tt.raw))
		})
	}
}

func TestNormalizeText_ThenExtract(t *testing.T) {
	t.Parallel()

	raw := `<html><head><script>document.write("999회 2020.01.01 1등 1조 0 0 0 0 0 0 1")</script></head>
<body><table>
<tr><td>303회</td><td>2026.02.19</td><td>1등</td><td>4조</td><td>6 3 9 5 6 6</td><td>1</td></tr>
<tr><td>보너스</td><td>각조</td><td>6 1 9 1 3 6</td><td>10</td></tr>
</table></body></html>`

	records, _, err := NewDrawExtractor(DefaultMaxBonusGap).Extract(NormalizeText(raw), "test")

	assert.NoError(t, err)
	if assert.Len(t, records, 1) {
		assert.Equal(t, 303, records[0].Round)
		assert.True(t, records[0].HasBonus())
	}
}
