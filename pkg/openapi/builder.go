package openapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/utils"
)

// Builder turns an OpenAPI 3 document into a code model
type Builder struct {
	doc   *openapi3.T
	model *codemodel.CodeModel
	log   zerolog.Logger

	components     map[string]codemodel.SchemaID
	inline         map[*openapi3.Schema]codemodel.SchemaID
	primitives     map[string]codemodel.SchemaID
	namedEnums     map[string]codemodel.SchemaID
	discriminators map[codemodel.SchemaID]*openapi3.Discriminator
	globals        map[string]*codemodel.Parameter
	host           *codemodel.Parameter
	names          map[string]bool
	enumCount      int
}

// Build creates a code model from an OpenAPI document. The client is named
// after the document title unless name is set.
func Build(doc *openapi3.T, name string, log zerolog.Logger) (*codemodel.CodeModel, error) {
	if doc == nil {
		return nil, errors.New("no document to build from")
	}
	if name == "" && doc.Info != nil {
		name = utils.PascalIdentifier(doc.Info.Title)
	}
	if name == "" {
		name = "Client"
	}
	b := &Builder{
		doc:            doc,
		model:          codemodel.New(name),
		log:            log.With().Str("stage", "build").Logger(),
		components:     map[string]codemodel.SchemaID{},
		inline:         map[*openapi3.Schema]codemodel.SchemaID{},
		primitives:     map[string]codemodel.SchemaID{},
		namedEnums:     map[string]codemodel.SchemaID{},
		discriminators: map[codemodel.SchemaID]*openapi3.Discriminator{},
		globals:        map[string]*codemodel.Parameter{},
		names:          map[string]bool{},
	}
	if doc.Info != nil {
		b.model.Description = doc.Info.Description
	}
	return b.build()
}

func (b *Builder) build() (*codemodel.CodeModel, error) {
	var componentNames []string
	if b.doc.Components != nil {
		componentNames = sortedKeys(b.doc.Components.Schemas)
	}
	for _, name := range componentNames {
		b.names[name] = true
	}
	for _, name := range componentNames {
		if _, err := b.component(name, nil); err != nil {
			return nil, fmt.Errorf("components.schemas.%s: %w", name, err)
		}
	}

	if len(b.doc.Servers) > 0 {
		b.host = &codemodel.Parameter{
			Name:           "$host",
			SerializedName: "$host",
			Description:    "server parameter",
			Schema:         b.primitive(codemodel.TypeString, ""),
			Implementation: codemodel.ImplementationClient,
			Location:       codemodel.LocationURI,
			Required:       true,
		}
		b.model.GlobalParameters = append(b.model.GlobalParameters, b.host)
	}
	if err := b.buildOperations(); err != nil {
		return nil, err
	}

	b.linkDiscriminators()
	b.markUsage()
	b.model.RebuildRelations()
	if err := codemodel.Validate(b.model); err != nil {
		return nil, fmt.Errorf("built code model is inconsistent: %w", err)
	}
	b.log.Debug().
		Int("schemas", len(b.model.LiveSchemas())).
		Int("groups", len(b.model.OperationGroups)).
		Int("operations", len(b.model.Operations())).
		Msg("built code model")
	return b.model, nil
}

// buildOperations groups operations by the prefix of their Group_Operation id.
// Groups appear in the order of their first operation, sorted by path then method.
func (b *Builder) buildOperations() error {
	if b.doc.Paths == nil {
		return nil
	}
	paths := b.doc.Paths.Map()
	groups := map[string]*codemodel.OperationGroup{}
	for _, path := range sortedKeys(paths) {
		item := paths[path]
		if item == nil {
			continue
		}
		operations := []*openapi3.Operation{
			item.Get, item.Post, item.Put, item.Patch,
			item.Delete, item.Options, item.Head, item.Trace,
		}
		methods := []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodOptions, http.MethodHead, http.MethodTrace,
		}
		for i, op := range operations {
			if op == nil {
				continue
			}
			groupName, operation, err := b.operation(path, methods[i], item, op)
			if err != nil {
				return fmt.Errorf("%s %s: %w", methods[i], path, err)
			}
			og, ok := groups[groupName]
			if !ok {
				og = &codemodel.OperationGroup{Name: groupName}
				groups[groupName] = og
				b.model.OperationGroups = append(b.model.OperationGroups, og)
			}
			og.Operations = append(og.Operations, operation)
		}
	}
	return nil
}

// splitOperationID splits "Group_Operation"; ids without a group land in the unnamed group
func splitOperationID(id string) (group, name string) {
	if g, n, ok := strings.Cut(id, "_"); ok && g != "" && n != "" {
		return g, n
	}
	return "", id
}

func (b *Builder) operation(path, method string, item *openapi3.PathItem, op *openapi3.Operation) (string, *codemodel.Operation, error) {
	group, name := splitOperationID(op.OperationID)
	if name == "" {
		name = strings.ToLower(method) + utils.PascalIdentifier(path)
	}
	description := op.Description
	if description == "" {
		description = op.Summary
	}
	o := &codemodel.Operation{
		Name:        name,
		Description: description,
		Pageable:    readPageable(op.Extensions),
		LongRunning: cast.ToBool(op.Extensions[extLongRunning]),
	}
	req := &codemodel.Request{Method: method, Path: path}
	if b.host != nil {
		o.Parameters = append(o.Parameters, b.host)
	}

	for _, ref := range mergeParameters(item.Parameters, op.Parameters) {
		if ref == nil || ref.Value == nil || ref.Value.In == openapi3.ParameterInCookie {
			continue
		}
		p := ref.Value
		param, err := b.parameter(ref, group, name)
		if err != nil {
			return group, nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		if param.Implementation == codemodel.ImplementationClient {
			o.Parameters = append(o.Parameters, param)
			continue
		}
		req.Parameters = append(req.Parameters, param)
		req.SignatureParameters = append(req.SignatureParameters, param)
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		body, mediaTypes, err := b.requestBody(path, method, op.RequestBody.Value)
		if err != nil {
			return group, nil, fmt.Errorf("request body: %w", err)
		}
		req.MediaTypes = mediaTypes
		if body != nil {
			req.Parameters = append(req.Parameters, body)
			req.SignatureParameters = append(req.SignatureParameters, body)
		}
	}
	o.Requests = []*codemodel.Request{req}

	if err := b.responses(o, group, op.Responses); err != nil {
		return group, nil, err
	}
	return group, o, nil
}

// mergeParameters lists path-level parameters first; an operation parameter with
// the same location and name replaces the path-level one
func mergeParameters(pathLevel, operationLevel openapi3.Parameters) openapi3.Parameters {
	key := func(ref *openapi3.ParameterRef) string {
		if ref == nil || ref.Value == nil {
			return ""
		}
		return ref.Value.In + ":" + ref.Value.Name
	}
	overridden := map[string]*openapi3.ParameterRef{}
	for _, ref := range operationLevel {
		overridden[key(ref)] = ref
	}
	var out openapi3.Parameters
	for _, ref := range pathLevel {
		if o, ok := overridden[key(ref)]; ok {
			out = append(out, o)
			delete(overridden, key(ref))
			continue
		}
		out = append(out, ref)
	}
	for _, ref := range operationLevel {
		if _, ok := overridden[key(ref)]; ok {
			out = append(out, ref)
		}
	}
	return out
}

// isClientParameter decides whether a parameter is fixed on the client. The
// x-ms-parameter-location extension wins; otherwise shared component parameters
// and the subscription id and api version are client parameters.
func isClientParameter(ref *openapi3.ParameterRef) bool {
	p := ref.Value
	switch cast.ToString(p.Extensions[extParameterLocation]) {
	case "client":
		return true
	case "method":
		return false
	}
	if strings.HasPrefix(ref.Ref, "#/components/parameters/") {
		return true
	}
	return (p.In == openapi3.ParameterInPath && p.Name == "subscriptionId") ||
		(p.In == openapi3.ParameterInQuery && p.Name == "api-version")
}

func (b *Builder) parameter(ref *openapi3.ParameterRef, group, operation string) (*codemodel.Parameter, error) {
	p := ref.Value
	client := isClientParameter(ref)
	key := p.In + ":" + p.Name
	if client {
		if g, ok := b.globals[key]; ok {
			return g, nil
		}
	}
	schema, err := b.schema(p.Schema, utils.PascalIdentifier(group)+utils.PascalIdentifier(operation)+utils.PascalIdentifier(p.Name))
	if err != nil {
		return nil, err
	}
	param := &codemodel.Parameter{
		Name:           clientName(p.Extensions, p.Name),
		SerializedName: p.Name,
		Description:    p.Description,
		Schema:         schema,
		Implementation: codemodel.ImplementationMethod,
		Location:       codemodel.ParameterLocation(p.In),
		Required:       p.Required,
	}
	if client {
		param.Implementation = codemodel.ImplementationClient
		b.globals[key] = param
		b.model.GlobalParameters = append(b.model.GlobalParameters, param)
	}
	return param, nil
}

// pickMedia prefers application/json, then the first media type in sorted order
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	if media, ok := content["application/json"]; ok {
		return "application/json", media
	}
	for _, mediaType := range sortedKeys(content) {
		return mediaType, content[mediaType]
	}
	return "", nil
}

func (b *Builder) requestBody(path, method string, rb *openapi3.RequestBody) (*codemodel.Parameter, []string, error) {
	mediaTypes := sortedKeys(rb.Content)
	mediaType, media := pickMedia(rb.Content)
	if media == nil {
		return nil, mediaTypes, nil
	}
	name := cast.ToString(rb.Extensions[extRequestBodyName])
	if name == "" {
		name = cast.ToString(rb.Extensions[extOriginalParamName])
	}
	if name == "" {
		name = "body"
	}
	anonymous := "Paths" + utils.PascalIdentifier(path) + utils.PascalIdentifier(strings.ToLower(method)) +
		"RequestbodyContent" + utils.PascalIdentifier(mediaType) + "Schema"
	schema, err := b.schema(media.Schema, anonymous)
	if err != nil {
		return nil, nil, err
	}
	return &codemodel.Parameter{
		Name:           name,
		SerializedName: name,
		Description:    rb.Description,
		Schema:         schema,
		Implementation: codemodel.ImplementationMethod,
		Location:       codemodel.LocationBody,
		Required:       rb.Required,
		Flattened:      cast.ToBool(rb.Extensions[extClientFlatten]),
	}, mediaTypes, nil
}

// isException reports whether a status code describes an error response
func isException(code string) bool {
	return code == "default" || strings.HasPrefix(code, "4") || strings.HasPrefix(code, "5")
}

func (b *Builder) responses(o *codemodel.Operation, group string, responses *openapi3.Responses) error {
	if responses == nil {
		return nil
	}
	m := responses.Map()
	for _, code := range sortedKeys(m) {
		ref := m[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		suffix := "Response"
		if isException(code) {
			suffix = "Error"
		}
		owner := utils.PascalIdentifier(group) + utils.PascalIdentifier(o.Name)
		r := &codemodel.Response{StatusCodes: []string{code}}
		if _, media := pickMedia(ref.Value.Content); media != nil && media.Schema != nil {
			schema, err := b.schema(media.Schema, owner+suffix)
			if err != nil {
				return fmt.Errorf("response %s: %w", code, err)
			}
			r.Schema = schema
		}
		for _, header := range sortedKeys(ref.Value.Headers) {
			h := ref.Value.Headers[header]
			if h == nil || h.Value == nil {
				continue
			}
			schema, err := b.schema(h.Value.Schema, owner+utils.PascalIdentifier(header))
			if err != nil {
				return fmt.Errorf("response %s header %s: %w", code, header, err)
			}
			r.Headers = append(r.Headers, &codemodel.Header{
				Name:   clientName(h.Value.Extensions, header),
				Header: header,
				Schema: schema,
			})
		}
		if isException(code) {
			o.Exceptions = append(o.Exceptions, r)
		} else {
			o.Responses = append(o.Responses, r)
		}
	}
	return nil
}

// markUsage marks every schema reachable from an operation as input, output or
// exception, following properties, elements and inheritance in both directions
func (b *Builder) markUsage() {
	seen := map[codemodel.SchemaUsage]map[codemodel.SchemaID]bool{
		codemodel.UsageInput:     {},
		codemodel.UsageOutput:    {},
		codemodel.UsageException: {},
	}
	var use func(id codemodel.SchemaID, usage codemodel.SchemaUsage)
	use = func(id codemodel.SchemaID, usage codemodel.SchemaUsage) {
		s := b.model.Schema(id)
		if s == nil || seen[usage][id] {
			return
		}
		seen[usage][id] = true
		switch s.Type {
		case codemodel.TypeObject, codemodel.TypeArray, codemodel.TypeDictionary,
			codemodel.TypeChoice, codemodel.TypeSealedChoice, codemodel.TypeConstant:
			s.AddUsage(usage)
		default:
			return
		}
		use(s.ElementType, usage)
		for _, p := range s.Properties {
			use(p.Schema, usage)
		}
		for _, rel := range [][]codemodel.SchemaID{s.Parents.All, s.Children.All} {
			for _, r := range rel {
				use(r, usage)
			}
		}
	}
	for _, op := range b.model.Operations() {
		for _, p := range op.AllParameters() {
			use(p.Schema, codemodel.UsageInput)
		}
		for _, r := range op.Responses {
			use(r.Schema, codemodel.UsageOutput)
			for _, h := range r.Headers {
				use(h.Schema, codemodel.UsageOutput)
			}
		}
		for _, r := range op.Exceptions {
			use(r.Schema, codemodel.UsageException)
		}
	}
}
