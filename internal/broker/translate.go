package broker

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/xiview/internal/protocol"
)

// coreRequest is a host envelope translated into an engine call.
type coreRequest struct {
	// ID is the host request id; non-empty when the host awaits a reply.
	ID        string
	Operation string
	Method    string
	Params    []byte
}

// translateHost turns a host envelope into an engine request.
func translateHost(data []byte) (coreRequest, error) {
	if !gjson.ValidBytes(data) {
		return coreRequest{}, fmt.Errorf("%w: not JSON", ErrInvalidEnvelope)
	}
	f := gjson.GetManyBytes(data, "id", "operation", "view_id", "file_path", "config_dir", "method", "params")
	id, op, viewID, filePath, configDir, method, params := f[0], f[1], f[2], f[3], f[4], f[5], f[6]

	req := coreRequest{ID: id.String(), Operation: op.String(), Method: op.String()}
	out := []byte(`{}`)
	var err error

	switch req.Operation {
	case protocol.OperationClientStarted:
		out, err = sjson.SetBytes(out, "config_dir", configDir.String())
	case protocol.OperationNewView:
		if filePath.String() != "" {
			out, err = sjson.SetBytes(out, "file_path", filePath.String())
		}
	case protocol.OperationSave:
		if out, err = sjson.SetBytes(out, "view_id", viewID.String()); err == nil {
			out, err = sjson.SetBytes(out, "file_path", filePath.String())
		}
	case protocol.OperationEdit:
		if method.String() == "" {
			return coreRequest{}, fmt.Errorf("%w: edit without method", ErrInvalidEnvelope)
		}
		out, err = editParams(method.String(), viewID.String(), params)
	case "":
		return coreRequest{}, fmt.Errorf("%w: missing operation", ErrInvalidEnvelope)
	default:
		return coreRequest{}, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}
	if err != nil {
		return coreRequest{}, fmt.Errorf("encode %s: %w", req.Operation, err)
	}
	req.Params = out
	return req, nil
}

// editParams builds the engine's edit params. Hosts may send insert and
// find text as a bare string; it is wrapped into the engine's shape.
func editParams(method, viewID string, params gjson.Result) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "method", method)
	if err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "view_id", viewID); err != nil {
		return nil, err
	}

	switch {
	case !params.Exists() || params.Type == gjson.Null:
		return sjson.SetRawBytes(out, "params", []byte(`{}`))
	case params.Type == gjson.String && (method == protocol.EditInsert || method == protocol.EditFind):
		inner, err := sjson.SetBytes([]byte(`{}`), "chars", params.Str)
		if err != nil {
			return nil, err
		}
		if method == protocol.EditFind {
			if inner, err = sjson.SetBytes(inner, "case_sensitive", false); err != nil {
				return nil, err
			}
		}
		return sjson.SetRawBytes(out, "params", inner)
	case params.Type == gjson.String && params.Str == "":
		return sjson.SetRawBytes(out, "params", []byte(`{}`))
	default:
		return sjson.SetRawBytes(out, "params", []byte(params.Raw))
	}
}

// translateCore renames an engine message's params to parameters, the
// field hosts read.
func translateCore(msg []byte) ([]byte, string, error) {
	f := gjson.GetManyBytes(msg, "method", "params")
	method, params := f[0].String(), f[1]
	if method == "" {
		return nil, "", fmt.Errorf("%w: engine message without method", ErrInvalidEnvelope)
	}

	raw := []byte(`{}`)
	if params.Exists() {
		raw = []byte(params.Raw)
	}
	out, err := sjson.SetRawBytes(msg, "parameters", raw)
	if err != nil {
		return nil, method, err
	}
	if out, err = sjson.DeleteBytes(out, "params"); err != nil {
		return nil, method, err
	}
	return out, method, nil
}

// replyEnvelope builds the reply to a host request. new_view replies carry
// the engine-issued view id.
func replyEnvelope(req coreRequest, result gjson.Result, callErr error) []byte {
	out, _ := sjson.SetBytes([]byte(`{}`), "id", req.ID)
	if callErr != nil {
		out, _ = sjson.SetBytes(out, "error", callErr.Error())
		return out
	}
	if req.Operation == protocol.OperationNewView {
		out, _ = sjson.SetBytes(out, "view_id", result.String())
	}
	return out
}
