package scaffolding

// Scaffold templates. Every generated block passes validation out of the
// box: manifest with name/title, plus edit/save/render sources exporting the
// bindings the registry generator imports.

const manifestTemplate = `{
  "name": "{{.Name}}",
  "title": "{{.Title}}",
{{- if .Category}}
  "category": "{{.Category}}",
{{- end}}
{{- if .Description}}
  "description": "{{.Description}}",
{{- end}}
  "version": "0.1.0",
  "attributes": {
    "content": { "type": "string", "default": "" }
  },
  "supports": {
    "align": true
  }
}
`

const editTemplate = `{{if .WithStyle}}import './style.css';

{{end}}interface Attributes {
  content: string;
}

interface EditProps {
  attributes: Attributes;
  setAttributes: (next: Partial<Attributes>) => void;
}

export function render({ attributes, setAttributes }: EditProps) {
  return (
    <div className="{{.ShortName}} {{.ShortName}}--editing" data-block="{{.Name}}">
      <textarea
        value={attributes.content}
        onChange={(event) => setAttributes({ content: event.target.value })}
        placeholder="{{.Title}} content"
      />
    </div>
  );
}
`

const saveTemplate = `interface Attributes {
  content: string;
}

export function save({ attributes }: { attributes: Attributes }) {
  return attributes;
}
`

const renderTemplate = `{{if .WithStyle}}import './style.css';

{{end}}interface Attributes {
  content: string;
}

export function render({ attributes }: { attributes: Attributes }) {
  return (
    <div className="{{.ShortName}}" data-block="{{.Name}}">
      {attributes.content}
    </div>
  );
}
`

const styleTemplate = `.{{.ShortName}} {
  display: block;
}

.{{.ShortName}}--editing textarea {
  width: 100%;
  min-height: 6rem;
}
`

const previewTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="320" height="180" viewBox="0 0 320 180">
  <rect width="320" height="180" fill="#f0f0f0"/>
  <text x="160" y="95" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#666">{{.Title}}</text>
</svg>
`
