/*
Package jsonschema decodes and validates json-schema documents,
compatible with drafts 4 and 6.

A schema is decoded from a json value and validated against:

	sch, err := jsonschema.DecodeJSON(data)
	if err != nil {
		return err
	}
	if err := jsonschema.Validate(doc, sch); err != nil {
		for _, verr := range err.(jsonschema.ErrorList) {
			fmt.Println(verr)
		}
	}

Validation never stops at the first failure: the returned ErrorList
holds every failure found, each tagged with the json-pointer of the
offending value and a kind from the jsonschema/kind package.

References resolve against an in-memory pool of namespaces, never the
network. Cross-document schemas are registered on a Validator:

	vd := jsonschema.Validator{Pool: jsonschema.Pool{
		"http://example.com/types.json": types,
	}}
	err := vd.Validate(doc, sch)

The draft-04 and draft-06 metaschemas are built in, so $schema
references resolve out of the box.

Schemas can also be built programmatically with Builder, and the
accessors GetValue, SetValue and DefaultFor navigate instance
documents under the guidance of their schema.
*/
package jsonschema
