package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileRefsSingleKey(t *testing.T) {
	ps := DefaultPatternSet()
	refs := ps.FileRefs(`{ selector: 'app-cart', templateUrl: './cart.component.html' }`)
	assert.Equal(t, []string{"./cart.component.html"}, refs)
}

func TestFileRefsListKey(t *testing.T) {
	ps := DefaultPatternSet()
	refs := ps.FileRefs(`{ styleUrls: ['./cart.component.css', './shared.css'] }`)
	assert.Equal(t, []string{"./cart.component.css", "./shared.css"}, refs)
}

func TestFileRefsMixedAndEmpty(t *testing.T) {
	ps := DefaultPatternSet()
	refs := ps.FileRefs(`{ templateUrl: "./a.html", styleUrls: [] }`)
	assert.Equal(t, []string{"./a.html"}, refs)

	assert.Empty(t, ps.FileRefs(`{ selector: 'x' }`))
	assert.Empty(t, PatternSet{}.FileRefs(`templateUrl: './a.html'`))
}

func TestFileRefsCustomKeys(t *testing.T) {
	ps := NewPatternSet([]string{"layoutFile"}, []string{"themeFiles"})
	refs := ps.FileRefs(`layoutFile: './grid.html', themeFiles: ['./dark.css']`)
	assert.Equal(t, []string{"./grid.html", "./dark.css"}, refs)
}
