package migrate

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// LoginIdentitiesColumns holds the columns for the "login_identities" table.
	LoginIdentitiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "email", Type: field.TypeString, Unique: true, Size: 320},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "role", Type: field.TypeEnum, Enums: []string{"patient", "staff", "admin"}, Default: "patient"},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// LoginIdentitiesTable holds the schema information for the "login_identities" table.
	LoginIdentitiesTable = &schema.Table{
		Name:       "login_identities",
		Columns:    LoginIdentitiesColumns,
		PrimaryKey: []*schema.Column{LoginIdentitiesColumns[0]},
	}

	// PatientsColumns holds the columns for the "patients" table.
	PatientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "email", Type: field.TypeString, Size: 320},
		{Name: "display_name", Type: field.TypeString, Size: 255},
		{Name: "phone", Type: field.TypeString, Nullable: true, Size: 32},
		{Name: "activated_at", Type: field.TypeTime, Nullable: true},
		{Name: "invite_sent_at", Type: field.TypeTime, Nullable: true},
		{Name: "opt_in_news", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "login_identity_id", Type: field.TypeUUID, Nullable: true},
	}
	// PatientsTable holds the schema information for the "patients" table.
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "patients_login_identities_patient",
				Columns:    []*schema.Column{PatientsColumns[8]},
				RefColumns: []*schema.Column{LoginIdentitiesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "patient_email",
				Unique:  false,
				Columns: []*schema.Column{PatientsColumns[1]},
			},
			{
				Name:    "patient_login_identity_id",
				Unique:  true,
				Columns: []*schema.Column{PatientsColumns[8]},
			},
		},
	}

	// ActivationTokensColumns holds the columns for the "activation_tokens" table.
	ActivationTokensColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "token_hash", Type: field.TypeString, Unique: true, Size: 64},
		{Name: "issued_at", Type: field.TypeTime},
		{Name: "expires_at", Type: field.TypeTime},
		{Name: "used", Type: field.TypeBool, Default: false},
		{Name: "used_at", Type: field.TypeTime, Nullable: true},
		{Name: "patient_id", Type: field.TypeUUID},
	}
	// ActivationTokensTable holds the schema information for the "activation_tokens" table.
	ActivationTokensTable = &schema.Table{
		Name:       "activation_tokens",
		Columns:    ActivationTokensColumns,
		PrimaryKey: []*schema.Column{ActivationTokensColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "activation_tokens_patients_activation_tokens",
				Columns:    []*schema.Column{ActivationTokensColumns[6]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "activationtoken_patient_id_issued_at",
				Unique:  false,
				Columns: []*schema.Column{ActivationTokensColumns[6], ActivationTokensColumns[2]},
			},
		},
	}

	// ExamsColumns holds the columns for the "exams" table.
	ExamsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "file_key", Type: field.TypeString, Size: 512},
		{Name: "exam_date", Type: field.TypeTime, Nullable: true},
		{Name: "published_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "patient_id", Type: field.TypeUUID},
	}
	// ExamsTable holds the schema information for the "exams" table.
	ExamsTable = &schema.Table{
		Name:       "exams",
		Columns:    ExamsColumns,
		PrimaryKey: []*schema.Column{ExamsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "exams_patients_exams",
				Columns:    []*schema.Column{ExamsColumns[6]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "exam_patient_id",
				Unique:  false,
				Columns: []*schema.Column{ExamsColumns[6]},
			},
		},
	}

	// ShareLinksColumns holds the columns for the "share_links" table.
	ShareLinksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "token", Type: field.TypeString, Unique: true, Size: 64},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "expires_at", Type: field.TypeTime, Nullable: true},
		{Name: "revoked_at", Type: field.TypeTime, Nullable: true},
		{Name: "view_count", Type: field.TypeInt, Default: 0},
		{Name: "last_viewed_at", Type: field.TypeTime, Nullable: true},
		{Name: "exam_id", Type: field.TypeUUID},
	}
	// ShareLinksTable holds the schema information for the "share_links" table.
	ShareLinksTable = &schema.Table{
		Name:       "share_links",
		Columns:    ShareLinksColumns,
		PrimaryKey: []*schema.Column{ShareLinksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "share_links_exams_share_links",
				Columns:    []*schema.Column{ShareLinksColumns[7]},
				RefColumns: []*schema.Column{ExamsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "sharelink_exam_id_revoked_at",
				Unique:  false,
				Columns: []*schema.Column{ShareLinksColumns[7], ShareLinksColumns[4]},
			},
		},
	}

	// RecommendationsColumns holds the columns for the "recommendations" table.
	RecommendationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "body", Type: field.TypeString, Size: 2147483647},
		{Name: "published_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "patient_id", Type: field.TypeUUID},
	}
	// RecommendationsTable holds the schema information for the "recommendations" table.
	RecommendationsTable = &schema.Table{
		Name:       "recommendations",
		Columns:    RecommendationsColumns,
		PrimaryKey: []*schema.Column{RecommendationsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "recommendations_patients_recommendations",
				Columns:    []*schema.Column{RecommendationsColumns[5]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}

	// NewsColumns holds the columns for the "news" table.
	NewsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "body", Type: field.TypeString, Size: 2147483647},
		{Name: "published_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// NewsTable holds the schema information for the "news" table.
	NewsTable = &schema.Table{
		Name:       "news",
		Columns:    NewsColumns,
		PrimaryKey: []*schema.Column{NewsColumns[0]},
	}

	// NotificationLogsColumns holds the columns for the "notification_logs" table.
	NotificationLogsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "event_kind", Type: field.TypeString, Size: 64},
		{Name: "subject_id", Type: field.TypeUUID},
		{Name: "recipient_id", Type: field.TypeUUID},
		{Name: "channel", Type: field.TypeString, Size: 16},
		{Name: "destination", Type: field.TypeString, Size: 320},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"sent", "failed"}},
		{Name: "error_message", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// NotificationLogsTable holds the schema information for the "notification_logs" table.
	NotificationLogsTable = &schema.Table{
		Name:       "notification_logs",
		Columns:    NotificationLogsColumns,
		PrimaryKey: []*schema.Column{NotificationLogsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "notificationlog_subject_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{NotificationLogsColumns[2], NotificationLogsColumns[8]},
			},
			{
				Name:    "notificationlog_status",
				Unique:  false,
				Columns: []*schema.Column{NotificationLogsColumns[6]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LoginIdentitiesTable,
		PatientsTable,
		ActivationTokensTable,
		ExamsTable,
		ShareLinksTable,
		RecommendationsTable,
		NewsTable,
		NotificationLogsTable,
	}
)

func init() {
	PatientsTable.ForeignKeys[0].RefTable = LoginIdentitiesTable
	ActivationTokensTable.ForeignKeys[0].RefTable = PatientsTable
	ExamsTable.ForeignKeys[0].RefTable = PatientsTable
	ShareLinksTable.ForeignKeys[0].RefTable = ExamsTable
	RecommendationsTable.ForeignKeys[0].RefTable = PatientsTable
}
