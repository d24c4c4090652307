package grpc

import (
	"fmt"

	"github.com/godilite/voting-tool/internal/service"
	"google.golang.org/protobuf/types/known/structpb"
)

// stringField returns req[key] as a string. A missing key reads as "".
func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	return s.StringValue, nil
}

// stringList returns req[key] as a list of strings. A missing key reads as
// an empty list.
func stringList(req *structpb.Struct, key string) ([]string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("field %q must be a list of strings", key)
	}

	out := make([]string, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("field %q[%d] must be a string", key, i)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func anyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func rankingToStruct(entries []service.RankingEntry) (*structpb.Struct, error) {
	list := make([]any, len(entries))
	for i, e := range entries {
		list[i] = map[string]any{
			"item":         e.Item,
			"total_score":  e.TotalScore,
			"contributors": anyList(e.Contributors),
		}
	}
	return structpb.NewStruct(map[string]any{"entries": list})
}
