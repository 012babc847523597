package transport

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/creator"
)

// Error kinds carried in the status details.
const (
	kindDuplicate    = "duplicate"
	kindUnknown      = "unknown"
	kindLoad         = "load"
	kindRegistration = "registration"
	kindGeneration   = "generation"
	kindStopped      = "stopped"
	kindCanceled     = "canceled"
	kindDeadline     = "deadline"
)

// Detail keys.
const (
	detailKind       = "kind"
	detailType       = "type"
	detailSymbol     = "symbol"
	detailCause      = "cause"
	detailCauseType  = "cause_type"
	detailStage      = "stage"
	detailStageType  = "stage_type"
	detailStageCause = "stage_cause"
)

// toStatus maps a runtime error to a gRPC status. The typed cause is encoded
// in a Struct detail so that the client can rebuild it. When the error comes
// from a Creator, the outermost failed stage travels along.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	var (
		dup     *core.DuplicateTypeError
		unknown *core.UnknownTypeError
		loadErr *core.LoadError
		regErr  *core.RegistrationError
		genErr  *core.GenerationError
	)

	code, details := codes.Unknown, map[string]any{}
	switch {
	case errors.As(err, &regErr):
		code = codes.InvalidArgument
		details[detailKind], details[detailType] = kindRegistration, regErr.Type
		switch {
		case errors.As(regErr.Err, &dup):
			code = codes.AlreadyExists
			details[detailCause], details[detailCauseType] = kindDuplicate, dup.Type
		case errors.As(regErr.Err, &loadErr):
			details[detailCause], details[detailSymbol] = kindLoad, loadErr.Symbol
		case errors.Is(regErr.Err, core.ErrRuntimeStopped):
			details[detailCause] = kindStopped
		}
	case errors.As(err, &dup):
		code = codes.AlreadyExists
		details[detailKind], details[detailType] = kindDuplicate, dup.Type
	case errors.As(err, &unknown):
		code = codes.NotFound
		details[detailKind], details[detailType] = kindUnknown, unknown.Type
	case errors.As(err, &loadErr):
		code = codes.InvalidArgument
		details[detailKind], details[detailSymbol] = kindLoad, loadErr.Symbol
	case errors.As(err, &genErr):
		code = codes.Aborted
		details[detailKind] = kindGeneration
		switch {
		case errors.Is(genErr.Err, context.Canceled):
			details[detailCause] = kindCanceled
		case errors.Is(genErr.Err, context.DeadlineExceeded):
			details[detailCause] = kindDeadline
		case errors.Is(genErr.Err, core.ErrEmptyGeneration):
			details[detailCause] = kindGeneration
		}
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, core.ErrRuntimeStopped):
		code = codes.Unavailable
		details[detailKind] = kindStopped
	}

	var stageErr *creator.StageError
	if errors.As(err, &stageErr) {
		details[detailStage] = string(stageErr.Stage)
		details[detailStageType] = stageErr.Type
		details[detailStageCause] = strings.ToValidUTF8(stageErr.Err.Error(), "�")
	}

	st := status.New(code, strings.ToValidUTF8(err.Error(), "�"))
	if len(details) == 0 {
		return st.Err()
	}
	detail, derr := structpb.NewStruct(details)
	if derr != nil {
		return st.Err()
	}
	if withDetail, derr := st.WithDetails(detail); derr == nil {
		st = withDetail
	}
	return st.Err()
}

// fromStatus rebuilds a core error from a gRPC status. Errors without a
// typed counterpart surface as *core.DeliveryError for addr, unless a Creator
// stage failed on the host, in which case the *creator.StageError is rebuilt
// around the cause.
func fromStatus(err error, addr core.Address) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &core.DeliveryError{Address: addr, Err: err}
	}

	detail := &structpb.Struct{}
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			detail = s
			break
		}
	}

	stage := stringField(detail, detailStage)
	msg := st.Message()
	if stage != "" {
		msg = stringField(detail, detailStageCause)
	}
	cause := errors.New(msg)

	typed := rebuild(st.Code(), detail, cause)
	if stage != "" {
		if typed == nil {
			typed = cause
		}
		return &creator.StageError{Stage: creator.Stage(stage), Type: stringField(detail, detailStageType), Err: typed}
	}
	if typed == nil {
		return &core.DeliveryError{Address: addr, Err: cause}
	}
	switch st.Code() {
	case codes.Canceled, codes.DeadlineExceeded, codes.Unavailable:
		return &core.DeliveryError{Address: addr, Err: typed}
	}
	return typed
}

// rebuild returns the typed error described by code and detail, or nil when
// there is none.
func rebuild(code codes.Code, detail *structpb.Struct, cause error) error {
	typ := stringField(detail, detailType)
	kind := stringField(detail, detailKind)

	switch code {
	case codes.AlreadyExists:
		if kind == kindRegistration {
			return &core.RegistrationError{Type: typ, Err: &core.DuplicateTypeError{Type: stringField(detail, detailCauseType)}}
		}
		return &core.DuplicateTypeError{Type: typ}
	case codes.NotFound:
		return &core.UnknownTypeError{Type: typ}
	case codes.InvalidArgument:
		switch kind {
		case kindLoad:
			return &core.LoadError{Symbol: stringField(detail, detailSymbol), Err: cause}
		case kindRegistration:
			inner := cause
			switch stringField(detail, detailCause) {
			case kindLoad:
				inner = &core.LoadError{Symbol: stringField(detail, detailSymbol), Err: cause}
			case kindStopped:
				inner = core.ErrRuntimeStopped
			}
			return &core.RegistrationError{Type: typ, Err: inner}
		}
	case codes.Aborted:
		if kind != kindGeneration {
			return nil
		}
		inner := cause
		switch stringField(detail, detailCause) {
		case kindCanceled:
			inner = context.Canceled
		case kindDeadline:
			inner = context.DeadlineExceeded
		case kindGeneration:
			inner = core.ErrEmptyGeneration
		}
		return &core.GenerationError{Err: inner}
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	case codes.Unavailable:
		if kind == kindStopped {
			return core.ErrRuntimeStopped
		}
	}
	return nil
}
