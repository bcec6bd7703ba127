package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileNamer(t *testing.T) {
	n := newFileNamer("ODataService.go", "ODataServiceCsdl.xml", "")

	steps := []struct {
		goName  string
		want    string
		renamed bool
	}{
		{"Person", "Person.go", false},
		{"ODataService", "ODataService_type.go", true},
		{"odataService", "odataService_type2.go", true},
		{"Order_test", "Order_test_type.go", true},
		{"PERSON", "PERSON_type.go", true},
		{"Airline", "Airline.go", false},
	}
	for _, s := range steps {
		name, renamed := n.name(s.goName)
		assert.Equal(t, s.want, name, s.goName)
		assert.Equal(t, s.renamed, renamed, s.goName)
	}
}
