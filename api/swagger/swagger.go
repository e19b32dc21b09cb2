package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Portal",
        "description": "Browser-facing portal for schedules, assignments and attendance over the university REST backend.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Auth",
            "description": "Login, registration and logout"
        },
        {
            "name": "Schedule",
            "description": "Weekly class schedule"
        },
        {
            "name": "Assignments",
            "description": "Assignments, submissions and files"
        },
        {
            "name": "Attendance",
            "description": "Attendance views, marking and export"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness of the session and override stores",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Degraded"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/nav": {
            "get": {
                "tags": [
                    "Shell"
                ],
                "summary": "Session-aware navigation menu",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/login": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Login view model",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "redirectUrl",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Page to return to"
                    },
                    {
                        "name": "registered",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Set after registration"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Sign in",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "consumes": [
                    "application/json",
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/register": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Create a student account",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RegisterRequest"
                        }
                    }
                ]
            }
        },
        "/logout": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Sign out",
                "responses": {
                    "303": {
                        "description": "Redirect to /login"
                    }
                }
            }
        },
        "/profile": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Current user profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                }
            },
            "put": {
                "tags": [
                    "Profile"
                ],
                "summary": "Update the current user profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ProfileUpdate"
                        }
                    }
                ]
            }
        },
        "/schedule": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Schedule view for one day",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "week",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "current or next"
                    },
                    {
                        "name": "day",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "monday..saturday"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Create a class",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ScheduleInput"
                        }
                    }
                ]
            }
        },
        "/schedule/{id}": {
            "put": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Edit a class",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Schedule ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ScheduleInput"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Delete a class",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Schedule ID"
                    },
                    {
                        "name": "confirm",
                        "in": "query",
                        "type": "boolean",
                        "required": true,
                        "description": "Must be true"
                    }
                ]
            }
        },
        "/assignments": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Assignments visible to the current user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                }
            },
            "post": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Publish an assignment",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignmentInput"
                        }
                    }
                ]
            }
        },
        "/assignments/{id}": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Assignment detail",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Assignment ID"
                    }
                ]
            },
            "put": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Edit an assignment",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Assignment ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignmentInput"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Delete an assignment",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Assignment ID"
                    },
                    {
                        "name": "confirm",
                        "in": "query",
                        "type": "boolean",
                        "required": true,
                        "description": "Must be true"
                    }
                ]
            }
        },
        "/assignments/{id}/submit": {
            "post": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Submit work",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Assignment ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Submission"
                        }
                    }
                ]
            }
        },
        "/assignments/{id}/files": {
            "post": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Attach a file",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Assignment ID"
                    },
                    {
                        "name": "file",
                        "in": "formData",
                        "type": "file",
                        "required": true
                    }
                ],
                "consumes": [
                    "multipart/form-data"
                ]
            }
        },
        "/assignments/{id}/files/{fileId}": {
            "delete": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Remove a file",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Assignment ID"
                    },
                    {
                        "name": "fileId",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "File ID"
                    },
                    {
                        "name": "confirm",
                        "in": "query",
                        "type": "boolean",
                        "required": true,
                        "description": "Must be true"
                    }
                ]
            }
        },
        "/files/{id}": {
            "get": {
                "tags": [
                    "Assignments"
                ],
                "summary": "Download a file",
                "produces": [
                    "application/octet-stream"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "File ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File body"
                    }
                }
            }
        },
        "/groups": {
            "get": {
                "tags": [
                    "Groups"
                ],
                "summary": "Student groups",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Attendance view for the current role",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "tab",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "today, teacher or student"
                    },
                    {
                        "name": "group_id",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Group filter"
                    },
                    {
                        "name": "schedule_id",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Class whose roster to load"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Record one student's attendance",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AttendanceInput"
                        }
                    }
                ]
            }
        },
        "/attendance/stats": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Attendance statistics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "student_id",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Student (staff only)"
                    }
                ]
            }
        },
        "/attendance/export": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Download attendance records",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "csv or pdf"
                    },
                    {
                        "name": "date_from",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "YYYY-MM-DD"
                    },
                    {
                        "name": "date_to",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "YYYY-MM-DD"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document"
                    }
                }
            }
        },
        "/attendance/{id}": {
            "put": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Change an attendance status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Record ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AttendanceStatusUpdate"
                        }
                    }
                ]
            }
        },
        "/attendance/schedules/{scheduleId}/students": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Students to mark for a class",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "scheduleId",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Schedule ID"
                    },
                    {
                        "name": "group_id",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Group of the class"
                    }
                ]
            }
        },
        "/attendance/schedules/{scheduleId}": {
            "post": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Save the attendance of a class",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to /login when the session is missing or expired"
                    }
                },
                "parameters": [
                    {
                        "name": "scheduleId",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Schedule ID"
                    },
                    {
                        "name": "group_id",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Group of the class"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BulkAttendanceRequest"
                        }
                    }
                ]
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "redirectUrl": {
                    "type": "string"
                }
            }
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "full_name": {
                    "type": "string"
                }
            }
        },
        "ProfileUpdate": {
            "type": "object",
            "properties": {
                "full_name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                }
            }
        },
        "ScheduleInput": {
            "type": "object",
            "properties": {
                "subject": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                },
                "room": {
                    "type": "string"
                },
                "group_id": {
                    "type": "string"
                },
                "teacher_id": {
                    "type": "string"
                }
            }
        },
        "AssignmentInput": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "deadline": {
                    "type": "string"
                },
                "group_id": {
                    "type": "string"
                },
                "teacher_id": {
                    "type": "string"
                },
                "teacher_name": {
                    "type": "string"
                }
            }
        },
        "Submission": {
            "type": "object",
            "properties": {
                "content": {
                    "type": "string"
                },
                "file_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "AttendanceInput": {
            "type": "object",
            "properties": {
                "schedule_id": {
                    "type": "string"
                },
                "student_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "AttendanceStatusUpdate": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                }
            }
        },
        "BulkAttendanceRequest": {
            "type": "object",
            "properties": {
                "attendance_data": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "detail": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
