package builtin

import (
	"reflect"
	"testing"

	"github.com/loglens/loglens/internal/tool"
)

func TestSortedGroups_OrderAndTruncation(t *testing.T) {
	groups := sortedGroups(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)

	want := []tool.Group{{Key: "c", Count: 5}, {Key: "a", Count: 2}, {Key: "b", Count: 2}}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("unexpected order: %v", groups)
	}
}

func TestAggregateByField(t *testing.T) {
	ws := makeWS([]string{
		`{"MdId":"0x1"}`,
		`{"MdId":"0x1"}`,
		`{"MdId":"0x2"}`,
		`{"Other":"x"}`,
	})

	res := runOK(t, NewAggregateByFieldTool(), tool.Args{
		"field_name": "mdid",
		"logs":       ws,
	})

	gc := res.Data.(*tool.GroupCounts)
	want := []tool.Group{{Key: "0x1", Count: 2}, {Key: "0x2", Count: 1}}
	if !reflect.DeepEqual(gc.Groups, want) {
		t.Errorf("unexpected groups: %v", gc.Groups)
	}
	if res.Meta.Extra["field"] != "MdId" {
		t.Errorf("expected canonical spelling, got %v", res.Meta.Extra["field"])
	}
}

func TestAggregateByField_UnknownField(t *testing.T) {
	ws := makeWS([]string{`{"MdId":"0x1"}`})
	runFail(t, NewAggregateByFieldTool(), tool.Args{
		"field_name": "nope",
		"logs":       ws,
	})
}

func TestCountUniquePerGroup(t *testing.T) {
	ws := makeWS([]string{
		`{"MdId":"0x1","CmMacAddress":"m1"}`,
		`{"MdId":"0x1","CmMacAddress":"m2"}`,
		`{"MdId":"0x1","CmMacAddress":"m1"}`, // duplicate modem, same domain
		`{"MdId":"0x2","CmMacAddress":"m3"}`,
		`{"MdId":"0x2","CmMacAddress":""}`, // empty count value ignored
		`{"CmMacAddress":"m4"}`,            // missing group field ignored
	})

	res := runOK(t, NewCountUniquePerGroupTool(), tool.Args{
		"group_by":    "MdId",
		"count_field": "CmMacAddress",
		"logs":        ws,
	})

	gc := res.Data.(*tool.GroupCounts)
	want := []tool.Group{{Key: "0x1", Count: 2}, {Key: "0x2", Count: 1}}
	if !reflect.DeepEqual(gc.Groups, want) {
		t.Errorf("unexpected groups: %v", gc.Groups)
	}
	if res.Meta.DataType != tool.DataAggregated {
		t.Errorf("unexpected data type %s", res.Meta.DataType)
	}
}

func TestCountUniquePerGroup_NoOverlap(t *testing.T) {
	ws := makeWS([]string{`{"MdId":"0x1"}`, `{"CmMacAddress":"m1"}`})
	runFail(t, NewCountUniquePerGroupTool(), tool.Args{
		"group_by":    "MdId",
		"count_field": "CmMacAddress",
		"logs":        ws,
	})
}
