package patterns

const librarySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "sections", "clauses", "weaknesses", "semantic"],
  "properties": {
    "version": { "type": "string", "minLength": 1 },
    "sections": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "patterns"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "title": { "type": "string" },
          "required": { "type": "boolean" },
          "critical": { "type": "boolean" },
          "weight": { "type": "number", "minimum": 0 },
          "bonus": { "type": "number", "minimum": 0, "maximum": 1 },
          "min_words": { "type": "integer", "minimum": 0 },
          "optimal_words": { "type": "integer", "minimum": 0 },
          "patterns": { "$ref": "#/definitions/patterns" }
        }
      }
    },
    "clauses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "importance", "patterns"],
        "properties": {
          "type": { "type": "string", "minLength": 1 },
          "title": { "type": "string" },
          "importance": { "type": "number", "exclusiveMinimum": 0 },
          "patterns": { "$ref": "#/definitions/patterns" }
        }
      }
    },
    "weaknesses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category", "weight", "theme", "presence"],
        "properties": {
          "category": { "type": "string", "minLength": 1 },
          "title": { "type": "string" },
          "weight": { "type": "number", "exclusiveMinimum": 0 },
          "theme": { "$ref": "#/definitions/theme" },
          "presence": { "$ref": "#/definitions/patterns" },
          "weak": { "type": "array", "items": { "type": "string" } },
          "negative": { "type": "array", "items": { "type": "string" } },
          "strong": { "type": "array", "items": { "type": "string" } }
        }
      }
    },
    "semantic": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "importance", "severity", "theme", "patterns"],
        "properties": {
          "type": { "type": "string", "minLength": 1 },
          "title": { "type": "string" },
          "importance": { "type": "number", "exclusiveMinimum": 0, "maximum": 1 },
          "severity": { "enum": ["low", "medium", "high", "critical"] },
          "theme": { "$ref": "#/definitions/theme" },
          "patterns": { "$ref": "#/definitions/patterns" }
        }
      }
    }
  },
  "definitions": {
    "patterns": {
      "type": "array",
      "minItems": 1,
      "items": { "type": "string", "minLength": 1 }
    },
    "theme": {
      "enum": [
        "content_completeness",
        "legal_deviation",
        "financial_risk",
        "quality_issues",
        "semantic_risk",
        "structural_issues"
      ]
    }
  }
}`

const corpusSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version"],
  "properties": {
    "version": { "type": "string", "minLength": 1 },
    "clauses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type", "text"],
        "properties": {
          "id": { "type": "string", "minLength": 1 },
          "type": { "type": "string", "minLength": 1 },
          "title": { "type": "string" },
          "text": { "type": "string", "minLength": 1 }
        }
      }
    },
    "documents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "text"],
        "properties": {
          "id": { "type": "string", "minLength": 1 },
          "title": { "type": "string" },
          "text": { "type": "string", "minLength": 1 }
        }
      }
    }
  }
}`
